// Package service provides helpers shared by handlers that sit outside the
// request/response cycle, currently the notification event publisher.
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/wine-dine/internal/queue"
)

// Publisher emits notification events.  Implementations never fail the
// caller's request; errors are logged and returned for tests.
type Publisher interface {
	Publish(ctx context.Context, typ string, payload any) error
}

// NopPublisher drops every event.  Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// EventPublisher publishes persistent JSON envelopes to queue.QueueName on
// the default exchange.  The connection is opened lazily and re-dialled
// after it drops.
type EventPublisher struct {
	URL string
	Log *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
	now  func() time.Time
}

// maxDialWait bounds a broker dial made on behalf of a request.
const maxDialWait = 2 * time.Second

// NewEventPublisher returns a publisher for the broker at url.
func NewEventPublisher(url string, log *zap.Logger) *EventPublisher {
	return &EventPublisher{URL: url, Log: log, now: time.Now}
}

// dialTimeout is maxDialWait, shortened to what is left of ctx.
func dialTimeout(ctx context.Context, now time.Time) time.Duration {
	wait := maxDialWait
	if dl, ok := ctx.Deadline(); ok {
		if left := dl.Sub(now); left < wait {
			wait = left
		}
	}
	return wait
}

func (p *EventPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		wait := dialTimeout(ctx, time.Now())
		if wait <= 0 {
			return nil, context.DeadlineExceeded
		}
		conn, err := amqp.DialConfig(p.URL, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial:      amqp.DefaultDial(wait),
		})
		if err != nil {
			return nil, err
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue.QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

// Publish wraps payload in an envelope of the given type and sends it.
func (p *EventPublisher) Publish(ctx context.Context, typ string, payload any) error {
	env, err := queue.NewEnvelope(typ, payload, p.now())
	if err != nil {
		p.Log.Error("rabbitmq: build envelope failed", zap.String("type", typ), zap.Error(err))
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		p.Log.Error("rabbitmq: marshal event failed", zap.String("type", typ), zap.Error(err))
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel(ctx)
	if err != nil {
		p.Log.Warn("rabbitmq: channel unavailable", zap.String("type", typ), zap.Error(err))
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    env.OccurredAt,
		Type:         typ,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.QueueName, false, false, pub); err != nil {
		p.Log.Warn("rabbitmq: publish failed", zap.String("type", typ), zap.Error(err))
		p.ch = nil
		return err
	}
	return nil
}

// Close releases the broker connection.
func (p *EventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
