// Package notification publishes payment events for the notification
// collaborator (email rendering lives there, not here). Publishing is
// best-effort: every error is logged and returned, and callers are
// expected to ignore it.
package notification

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/config"
	"github.com/tailorcraft/payment-service/internal/usecase"
)

const defaultQueue = "payment.events"

// Publisher is an AMQP-backed usecase.Notifier. The connection is
// dialed lazily and redialed after broker restarts.
type Publisher struct {
	cfg    config.RabbitMQConfig
	logger *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(cfg config.RabbitMQConfig, logger *zap.Logger) *Publisher {
	if cfg.Queue == "" {
		cfg.Queue = defaultQueue
	}
	return &Publisher{cfg: cfg, logger: logger}
}

// channel returns a usable channel, dialing or redialing as needed.
func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.cfg.URL)
		if err != nil {
			return nil, err
		}
		p.conn = conn
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}

	// Durable queue so events survive broker restarts.
	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}

	p.ch = ch
	return ch, nil
}

type paymentSucceededMessage struct {
	Type string               `json:"type"`
	Data usecase.PaymentEvent `json:"data"`
	At   time.Time            `json:"at"`
}

// PaymentSucceeded publishes one persistent payment.succeeded message.
func (p *Publisher) PaymentSucceeded(ctx context.Context, event usecase.PaymentEvent) error {
	ch, err := p.channel()
	if err != nil {
		p.logger.Warn("notification broker unavailable",
			zap.String("payment_id", event.PaymentID),
			zap.Error(err))
		return err
	}

	body, err := json.Marshal(paymentSucceededMessage{
		Type: "payment.succeeded",
		Data: event,
		At:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",          // default exchange
		p.cfg.Queue, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		p.logger.Warn("notification publish failed",
			zap.String("payment_id", event.PaymentID),
			zap.Error(err))
		return err
	}

	p.logger.Info("payment notification published",
		zap.String("payment_id", event.PaymentID),
		zap.String("booking_id", event.BookingID))
	return nil
}

// Close releases the broker connection on shutdown.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
