package kds

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPMirror republishes kitchen events on a durable fanout exchange.
type AMQPMirror struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func DialAMQPMirror(url, exchange string) (*AMQPMirror, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPMirror{conn: conn, channel: channel, exchange: exchange}, nil
}

func (m *AMQPMirror) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channel.PublishWithContext(ctx,
		m.exchange, // exchange
		msg.Type,   // routing key, ignored by fanout
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    fmt.Sprintf("%d", msg.Seq),
			Type:         msg.Type,
			Body:         body,
			Timestamp:    msg.At,
		})
}

func (m *AMQPMirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.channel.Close(); err != nil {
		m.conn.Close()
		return err
	}
	return m.conn.Close()
}
