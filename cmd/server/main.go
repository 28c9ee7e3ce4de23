// Command server runs the restaurant site API and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iliyamo/wine-dine/internal/config"
)

var (
	// Global flags
	verbose bool

	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command.  Without a subcommand it serves.
var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Wine & Dine site API and admin back office",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		zc := zap.NewProductionConfig()
		if verbose || cfg.IsDev() {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logger.With(zap.String("env", cfg.Env))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply migrations before serving")
	serveCmd.Flags().BoolVar(&serveWithConsumer, "with-consumer", false, "run the notification consumer in-process")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email address")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	seedMenuCmd.Flags().StringVarP(&seedFile, "file", "f", "menu.yaml", "YAML list of menu items")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd, seedMenuCmd, consumeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
