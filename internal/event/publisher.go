package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	PublishEvent(ctx context.Context, event CropCareEvent) error
	HealthCheck() PublisherHealthStatus
}

// RabbitPublisher publishes crop care events to the cropcare_events queue.
type RabbitPublisher struct {
	conn *RabbitMQConnection

	mu                sync.Mutex
	queueDeclared     bool
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

func NewRabbitPublisher(conn *RabbitMQConnection) *RabbitPublisher {
	return &RabbitPublisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

func (p *RabbitPublisher) PublishEvent(ctx context.Context, event CropCareEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.conn.IsOpen() {
		p.messagesFailed++
		return fmt.Errorf("rabbitmq connection is closed")
	}

	if !p.queueDeclared {
		_, err := p.conn.Channel.QueueDeclare(
			CropCareQueue, // queue name
			true,          // durable
			false,         // delete when unused
			false,         // exclusive
			false,         // no-wait
			nil,           // arguments
		)
		if err != nil {
			p.messagesFailed++
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		p.queueDeclared = true
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal crop care event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",            // exchange
		CropCareQueue, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         string(event.EventType),
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish crop care event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Crop care event published",
		"queue", CropCareQueue,
		"event_type", event.EventType,
		"event_id", event.ID,
	)
	return nil
}

func (p *RabbitPublisher) HealthCheck() PublisherHealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PublisherHealthStatus{
		IsHealthy:         p.conn != nil && p.conn.IsOpen(),
		MessagesPublished: p.messagesPublished,
		MessagesFailed:    p.messagesFailed,
		LastPublishTime:   p.lastPublishTime,
		Queue:             CropCareQueue,
	}
}

type PublisherHealthStatus struct {
	IsHealthy         bool      `json:"is_healthy"`
	MessagesPublished int64     `json:"messages_published"`
	MessagesFailed    int64     `json:"messages_failed"`
	LastPublishTime   time.Time `json:"last_publish_time"`
	Queue             string    `json:"queue"`
}

// LogPublisher stands in when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) HealthCheck() PublisherHealthStatus {
	return PublisherHealthStatus{IsHealthy: true, Queue: "log"}
}

func (LogPublisher) PublishEvent(_ context.Context, event CropCareEvent) error {
	slog.Info("Crop care event (no broker configured)",
		"event_type", event.EventType,
		"event_id", event.ID,
		"phone", event.Phone,
	)
	return nil
}
