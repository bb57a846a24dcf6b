package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mahirjain10/image-upload-lambda/internal/types"
	"github.com/mahirjain10/image-upload-lambda/internal/utils"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	statusRoutingKey = "status"
	publishTimeout   = 5 * time.Second
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// StatusPublisher pushes one status message per processed upload to a
// direct exchange. The channel is reopened lazily if the broker closed it.
type StatusPublisher struct {
	url      string
	exchange string
	logger   zerolog.Logger
	open     func() (channel, error)

	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
}

func NewStatusPublisher(url string, exchange string, logger zerolog.Logger) (*StatusPublisher, error) {
	p := newStatusPublisher(exchange, logger, nil)
	p.url = url
	p.open = p.dial
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func newStatusPublisher(exchange string, logger zerolog.Logger, open func() (channel, error)) *StatusPublisher {
	return &StatusPublisher{
		exchange: exchange,
		logger:   logger.With().Str("component", "status-publisher").Logger(),
		open:     open,
	}
}

// connect must be called with mu held, or before p is shared.
func (p *StatusPublisher) connect() error {
	ch, err := p.open()
	if err != nil {
		return err
	}
	p.ch = ch
	return nil
}

// dial reuses the connection while it is open and declares the exchange on
// every new channel.
func (p *StatusPublisher) dial() (channel, error) {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := NewRabbitMQClient(p.url)
		if err != nil {
			return nil, err
		}
		p.conn = conn
	}
	ch, err := NewChannel(p.conn)
	if err != nil {
		return nil, err
	}
	if err := DeclareExchange(ch, p.exchange); err != nil {
		ch.Close()
		return nil, err
	}
	return ch, nil
}

func (p *StatusPublisher) Publish(ctx context.Context, message *types.StatusMessage) error {
	body, err := utils.SerializeJSON(message)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		if err := p.connect(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		statusRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	p.logger.Debug().Str("status", message.Data.Status).Str("fileName", message.Data.FileName).Msg("pushed to status exchange")
	return nil
}

func (p *StatusPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil && !p.ch.IsClosed() {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil && !p.conn.IsClosed() {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// NoopPublisher is used when RABBITMQ_URL is not set.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *types.StatusMessage) error { return nil }

func (NoopPublisher) Close() error { return nil }
