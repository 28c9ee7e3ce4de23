package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Notifier delivers one rendered notification line.
type Notifier interface {
	Notify(ctx context.Context, line string) error
}

// LogFile appends notification lines to <Dir>/notifications.log.
type LogFile struct {
	Dir string
	mu  sync.Mutex
}

// NewLogFile returns a LogFile writing under dir.
func NewLogFile(dir string) *LogFile { return &LogFile{Dir: dir} }

// Path is the file lines are appended to.
func (l *LogFile) Path() string { return filepath.Join(l.Dir, "notifications.log") }

func (l *LogFile) Notify(_ context.Context, line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", l.Dir, err)
	}
	f, err := os.OpenFile(l.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// Consumer reads notification events from QueueName and hands every
// rendered line to its notifiers.
type Consumer struct {
	URL       string
	Notifiers []Notifier
	Log       *zap.Logger

	// MaxBackoff caps the delay between reconnect attempts.
	MaxBackoff time.Duration
}

// NewConsumer builds a consumer for the broker at url.
func NewConsumer(url string, log *zap.Logger, notifiers ...Notifier) *Consumer {
	return &Consumer{URL: url, Notifiers: notifiers, Log: log, MaxBackoff: 30 * time.Second}
}

// Run connects to the broker and consumes until ctx is cancelled, redialling
// with exponential backoff whenever the connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("notify-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff, c.MaxBackoff)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("notify-consumer: consume loop ended; reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("notify-consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.Log.Info("notify-consumer: listening", zap.String("queue", QueueName))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.Body); err != nil {
				c.Log.Error("notify-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one delivery body and fans the rendered line out to every
// notifier.  It fails when the body cannot be decoded or when no notifier
// accepted the line.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line, err := env.Summary()
	if err != nil {
		return err
	}
	if len(c.Notifiers) == 0 {
		return nil
	}

	var errs []error
	for _, n := range c.Notifiers {
		if err := n.Notify(ctx, line); err != nil {
			c.Log.Warn("notify-consumer: notifier failed", zap.String("type", env.Type), zap.Error(err))
			errs = append(errs, err)
		}
	}
	if len(errs) == len(c.Notifiers) {
		return errors.Join(errs...)
	}
	return nil
}

func nextBackoff(cur, limit time.Duration) time.Duration {
	if limit <= 0 {
		limit = 30 * time.Second
	}
	cur *= 2
	if cur > limit {
		cur = limit
	}
	return cur
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
