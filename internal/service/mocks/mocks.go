package mocks

import (
	"context"

	"wink-server/internal/model"
	"wink-server/internal/service"

	"github.com/stretchr/testify/mock"
)

// UserReader is a mock type for the service.UserReader type
type UserReader struct {
	mock.Mock
}

func (m *UserReader) GetByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	var user *model.User
	if u := args.Get(0); u != nil {
		user = u.(*model.User)
	}
	return user, args.Error(1)
}

// PushGateway is a mock type for the service.PushGateway type
type PushGateway struct {
	mock.Mock
}

func (m *PushGateway) Send(ctx context.Context, payload *model.NotificationPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func (m *PushGateway) Name() string {
	return "mock"
}

// DeliveryMarker is a mock type for the service.DeliveryMarker type
type DeliveryMarker struct {
	mock.Mock
}

func (m *DeliveryMarker) Claim(ctx context.Context, chatID, messageID string) (bool, error) {
	args := m.Called(ctx, chatID, messageID)
	return args.Bool(0), args.Error(1)
}

func (m *DeliveryMarker) Release(ctx context.Context, chatID, messageID string) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

// EventHandler is a mock for the transports' chat-message event handler.
type EventHandler struct {
	mock.Mock
}

func (m *EventHandler) HandleMessageCreated(ctx context.Context, event *model.ChatMessageEvent) model.Outcome {
	args := m.Called(ctx, event)
	return args.Get(0).(model.Outcome)
}

var (
	_ service.UserReader     = (*UserReader)(nil)
	_ service.PushGateway    = (*PushGateway)(nil)
	_ service.DeliveryMarker = (*DeliveryMarker)(nil)
)
