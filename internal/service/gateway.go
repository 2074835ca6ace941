package service

import (
	"context"

	"wink-server/internal/model"
)

// PushGateway доставляет одно уведомление и возвращает идентификатор сообщения у провайдера.
type PushGateway interface {
	Send(ctx context.Context, payload *model.NotificationPayload) (string, error)
	Name() string
}

// UserReader - точечное чтение профиля. Для отсутствующего пользователя
// возвращает model.ErrUserNotFound.
type UserReader interface {
	GetByID(ctx context.Context, userID string) (*model.User, error)
}

// DeliveryMarker guards against sending twice for the same message.
type DeliveryMarker interface {
	Claim(ctx context.Context, chatID, messageID string) (bool, error)
	Release(ctx context.Context, chatID, messageID string) error
}
