//go:build integration

package messaging_test

import (
	"context"
	"testing"
	"time"

	"wink-server/internal/messaging"
	"wink-server/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const testQueue = "chat_message_created_test"

type recordingHandler struct {
	events chan *model.ChatMessageEvent
}

func (h *recordingHandler) HandleMessageCreated(_ context.Context, ev *model.ChatMessageEvent) model.Outcome {
	h.events <- ev
	return model.Sent("test")
}

type ConsumerIntegrationSuite struct {
	suite.Suite
	container *rabbitmq.RabbitMQContainer
	conn      *amqp.Connection
}

func (s *ConsumerIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(s.T(), err)
	s.container = container

	uri, err := container.AmqpURL(ctx)
	require.NoError(s.T(), err)

	s.conn, err = amqp.Dial(uri)
	require.NoError(s.T(), err)
}

func (s *ConsumerIntegrationSuite) TearDownSuite() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *ConsumerIntegrationSuite) TestPublishedEventReachesHandler() {
	logger := zap.NewNop()
	handler := &recordingHandler{events: make(chan *model.ChatMessageEvent, 4)}

	publisher, err := messaging.NewEventPublisher(s.conn, testQueue, logger)
	s.Require().NoError(err)

	consumer, err := messaging.NewConsumer(s.conn, logger, testQueue, 2,
		messaging.NewProcessor(logger, handler, 5*time.Second))
	s.Require().NoError(err)

	done := make(chan error, 1)
	go func() { done <- consumer.Start() }()

	body := []byte(`{"value":{"name":"projects/p/databases/(default)/documents/chats/c-1/messages/m-1",
		"fields":{"senderId":{"stringValue":"a"},"receiverId":{"stringValue":"b"},"content":{"stringValue":"hey"}}}}`)
	s.Require().NoError(publisher.Publish(context.Background(), []byte(`{"value":`)))
	s.Require().NoError(publisher.Publish(context.Background(), body))

	select {
	case ev := <-handler.events:
		s.Equal("c-1", ev.ChatID)
		s.Equal("m-1", ev.MessageID)
		s.Equal("hey", ev.Message.Content)
	case <-time.After(30 * time.Second):
		s.FailNow("event was not delivered to the handler")
	}

	consumer.Stop()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(15 * time.Second):
		s.FailNow("consumer did not stop")
	}

	// Битое сообщение отклонено без повторной постановки, очередь пуста.
	ch, err := s.conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()
	q, err := ch.QueueDeclarePassive(testQueue, true, false, false, false, nil)
	s.Require().NoError(err)
	s.Equal(0, q.Messages)
}

func TestConsumerIntegration(t *testing.T) {
	suite.Run(t, new(ConsumerIntegrationSuite))
}
