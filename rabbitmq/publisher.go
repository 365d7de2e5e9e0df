// Package rabbitmq publishes analyzed-report events for downstream
// consumers (letter drafting, UI refresh).
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/streadway/amqp"
)

// RoutingKeyAnalyzed is the routing key for report-analyzed events.
const RoutingKeyAnalyzed = "report.analyzed"

// AnalyzedEvent is the message body published after a successful analysis.
type AnalyzedEvent struct {
	ReportID          string    `json:"report_id"`
	ClientID          string    `json:"client_id"`
	NegativeItemCount int       `json:"negative_item_count"`
	DiscrepancyCount  int       `json:"discrepancy_count"`
	AnalyzedAt        time.Time `json:"analyzed_at"`
}

// Publisher is a reconnecting RabbitMQ publisher.
type Publisher struct {
	mu       sync.Mutex
	amqpURL  string
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher connects and declares the exchange.
func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	p := &Publisher{amqpURL: amqpURL, exchange: exchange}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

// PublishAnalyzed sends one analyzed-report event.
func (p *Publisher) PublishAnalyzed(event AnalyzedEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.publish(ctx, RoutingKeyAnalyzed, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
}

// Close closes the publisher connection and channel.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.channel != nil {
		if cerr := p.channel.Close(); cerr != nil {
			log.WithError(cerr).Warn("failed to close channel")
			err = cerr
		}
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil {
			log.WithError(cerr).Warn("failed to close connection")
			if err == nil {
				err = cerr
			}
		}
	}
	return err
}

func (p *Publisher) connectLocked() error {
	conn, err := amqp.Dial(p.amqpURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	p.conn = conn
	p.channel = ch
	return nil
}

func (p *Publisher) closeLocked() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func isConnClosedErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp.ErrClosed) {
		return true
	}
	return strings.Contains(err.Error(), "channel/connection is not open")
}

func (p *Publisher) publish(ctx context.Context, routingKey string, publishing amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.channel == nil {
		p.closeLocked()
		if err := p.connectLocked(); err != nil {
			return err
		}
	}

	err := p.channel.Publish(p.exchange, routingKey, false, false, publishing)
	if err != nil && isConnClosedErr(err) {
		p.closeLocked()
		if connErr := p.connectLocked(); connErr != nil {
			return fmt.Errorf("failed to publish message: %w (reconnect failed: %v)", err, connErr)
		}
		err = p.channel.Publish(p.exchange, routingKey, false, false, publishing)
	}
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("context timeout while publishing message: %w", ctx.Err())
	default:
	}
	return nil
}

// IsConnected indicates whether the publisher currently has an open
// connection and channel.
func (p *Publisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil && !p.conn.IsClosed() && p.channel != nil
}
