package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wink-server/internal/model"
	"wink-server/internal/trigger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const consumerTag = "chat-notifier"

// EventHandler обрабатывает одно событие создания сообщения чата.
// Реализуется service.Dispatcher.
type EventHandler interface {
	HandleMessageCreated(ctx context.Context, event *model.ChatMessageEvent) model.Outcome
}

type Consumer struct {
	conn        *amqp.Connection
	logger      *zap.Logger
	queueName   string
	concurrency int
	processor   *Processor
	stopChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewConsumer(conn *amqp.Connection, logger *zap.Logger, queueName string, concurrency int, processor *Processor) (*Consumer, error) {
	if conn == nil {
		return nil, errors.New("RabbitMQ connection is nil")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("invalid worker concurrency: %d", concurrency)
	}
	return &Consumer{
		conn:        conn,
		logger:      logger.Named("consumer"),
		queueName:   queueName,
		concurrency: concurrency,
		processor:   processor,
		stopChannel: make(chan struct{}),
	}, nil
}

// Start declares the queue, starts the workers and blocks until Stop is called
// or the delivery channel is closed by the broker.
func (c *Consumer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("не удалось открыть канал RabbitMQ: %w", err)
	}
	defer ch.Close()

	q, err := declareQueue(ch, c.queueName)
	if err != nil {
		return err
	}
	c.logger.Info("Очередь успешно объявлена/найдена", zap.String("queue", q.Name))

	if err := ch.Qos(c.concurrency, 0, false); err != nil {
		return fmt.Errorf("не удалось установить QoS: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		consumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("не удалось зарегистрировать консьюмера: %w", err)
	}

	c.logger.Info("Консьюмер запущен, ожидание сообщений...", zap.Int("concurrency", c.concurrency))

	drained := make(chan struct{})
	c.wg.Add(c.concurrency)
	for i := 0; i < c.concurrency; i++ {
		go func(workerID int) {
			defer c.wg.Done()
			logger := c.logger.With(zap.Int("worker_id", workerID))
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-msgs:
					if !ok {
						logger.Info("Канал сообщений закрыт, воркер завершает работу")
						return
					}
					c.processor.ProcessMessage(ctx, d)
				}
			}
		}(i)
	}
	go func() {
		c.wg.Wait()
		close(drained)
	}()

	select {
	case <-c.stopChannel:
		c.logger.Info("Получен сигнал остановки, ожидание завершения текущих сообщений...")
		// После Cancel брокер закрывает канал доставок, воркеры дорабатывают и выходят.
		if err := ch.Cancel(consumerTag, false); err != nil {
			c.logger.Warn("Не удалось отменить подписку консьюмера, отменяем контекст воркеров", zap.Error(err))
			cancel()
		}
		<-drained
	case <-drained:
		c.logger.Warn("Все воркеры завершились без сигнала остановки")
	}

	c.logger.Info("Все воркеры консьюмера остановлены")
	return nil
}

// Stop signals Start to return. Safe to call more than once.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		c.logger.Info("Инициирована остановка консьюмера...")
		close(c.stopChannel)
	})
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("не удалось объявить очередь '%s': %w", name, err)
	}
	return q, nil
}

// Processor обрабатывает входящие сообщения очереди.
type Processor struct {
	logger  *zap.Logger
	handler EventHandler
	timeout time.Duration
}

func NewProcessor(logger *zap.Logger, handler EventHandler, timeout time.Duration) *Processor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Processor{
		logger:  logger.Named("processor"),
		handler: handler,
		timeout: timeout,
	}
}

// ProcessMessage decodes one delivery and dispatches it. Undecodable bodies are
// rejected without requeue; every decoded event is acked whatever its outcome,
// because dispatch failures are terminal.
func (p *Processor) ProcessMessage(ctx context.Context, d amqp.Delivery) {
	log := p.logger.With(zap.Uint64("delivery_tag", d.DeliveryTag))

	event, err := trigger.Decode(d.Body)
	if err != nil {
		log.Error("Ошибка декодирования события", zap.Error(err), zap.ByteString("body", d.Body))
		if ackErr := d.Nack(false, false); ackErr != nil {
			log.Error("Ошибка Nack сообщения после ошибки декодирования", zap.Error(ackErr))
		}
		return
	}

	processCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	outcome := p.handler.HandleMessageCreated(processCtx, event)

	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("Ошибка Ack сообщения", zap.Error(ackErr))
		return
	}
	log.Debug("Сообщение обработано и подтверждено (Ack)",
		zap.String("chat_id", event.ChatID),
		zap.String("message_id", event.MessageID),
		zap.Stringer("outcome", outcome.Kind),
	)
}
