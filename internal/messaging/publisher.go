package messaging

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventPublisher кладёт сырые события документов Firestore в очередь чата.
// Используется мостами платформы событий и интеграционными тестами.
type EventPublisher struct {
	conn      *amqp.Connection
	logger    *zap.Logger
	queueName string
}

func NewEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*EventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}

	p := &EventPublisher{
		conn:      conn,
		logger:    logger.Named("EventPublisher").With(zap.String("queue", queueName)),
		queueName: queueName,
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()
	if _, err := declareQueue(ch, queueName); err != nil {
		return nil, fmt.Errorf("failed to verify queue %s on init: %w", queueName, err)
	}
	return p, nil
}

// Publish sends one event body as a persistent JSON message.
func (p *EventPublisher) Publish(ctx context.Context, body []byte) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Ошибка публикации события", zap.Error(err))
		return fmt.Errorf("failed to publish chat event: %w", err)
	}
	p.logger.Debug("Событие опубликовано", zap.Int("bytes", len(body)))
	return nil
}
