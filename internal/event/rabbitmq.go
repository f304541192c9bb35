package event

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"cropcare-service/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConnection holds the RabbitMQ connection and channel
type RabbitMQConnection struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
	closed     atomic.Bool
}

// ConnectRabbitMQ dials the broker and watches the channel so publishers can
// report a lost connection instead of failing blind.
func ConnectRabbitMQ(cfg config.RabbitMQConfig) (*RabbitMQConnection, error) {
	connStr := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	conn, err := amqp.Dial(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	r := &RabbitMQConnection{
		Connection: conn,
		Channel:    ch,
	}
	go r.watch(ch.NotifyClose(make(chan *amqp.Error, 1)))

	slog.Info("Connected to RabbitMQ", "host", cfg.Host, "port", cfg.Port)
	return r, nil
}

func (r *RabbitMQConnection) watch(closeCh <-chan *amqp.Error) {
	err, ok := <-closeCh
	r.closed.Store(true)
	if ok && err != nil {
		slog.Error("RabbitMQ channel closed", "code", err.Code, "reason", err.Reason)
	}
}

func (r *RabbitMQConnection) IsOpen() bool {
	return !r.closed.Load() && r.Connection != nil && !r.Connection.IsClosed()
}

func (r *RabbitMQConnection) Close() error {
	r.closed.Store(true)
	if r.Channel != nil {
		if err := r.Channel.Close(); err != nil {
			slog.Error("failed to close RabbitMQ channel", "error", err)
		}
	}
	if r.Connection != nil {
		if err := r.Connection.Close(); err != nil {
			slog.Error("failed to close RabbitMQ connection", "error", err)
			return err
		}
	}
	slog.Info("RabbitMQ connection closed")
	return nil
}
