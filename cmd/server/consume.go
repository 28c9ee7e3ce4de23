package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/wine-dine/internal/notify"
	"github.com/iliyamo/wine-dine/internal/queue"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Run the notification consumer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err := newConsumer().Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

// newConsumer always writes the notification log and forwards to Telegram
// when a bot token and chat are configured.
func newConsumer() *queue.Consumer {
	notifiers := []queue.Notifier{queue.NewLogFile(cfg.Notify.LogDir)}
	if cfg.Notify.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			logger.Warn("telegram disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	return queue.NewConsumer(cfg.Queue.URL, logger.Named("notify"), notifiers...)
}
