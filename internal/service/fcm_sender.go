package service

import (
	"context"
	"fmt"

	"wink-server/internal/model"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fcmClient - подмножество *messaging.Client, которое нужно отправителю.
type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendDryRun(ctx context.Context, message *messaging.Message) (string, error)
}

// --- Реальный FCM Sender ---

type fcmSender struct {
	client fcmClient
	dryRun bool
	logger *zap.Logger
}

// NewFCMSender wraps an Admin SDK messaging client. With dryRun the message is
// only validated by FCM and never delivered.
func NewFCMSender(client *messaging.Client, dryRun bool, logger *zap.Logger) PushGateway {
	return newFCMSender(client, dryRun, logger)
}

func newFCMSender(client fcmClient, dryRun bool, logger *zap.Logger) *fcmSender {
	return &fcmSender{
		client: client,
		dryRun: dryRun,
		logger: logger.Named("fcm_sender"),
	}
}

func (s *fcmSender) Name() string { return "fcm" }

func (s *fcmSender) Send(ctx context.Context, payload *model.NotificationPayload) (string, error) {
	message := toFCMMessage(payload)

	var (
		id  string
		err error
	)
	if s.dryRun {
		id, err = s.client.SendDryRun(ctx, message)
	} else {
		id, err = s.client.Send(ctx, message)
	}
	if err != nil {
		switch {
		case messaging.IsUnregistered(err), messaging.IsSenderIDMismatch(err):
			s.logger.Warn("FCM token is no longer valid",
				zap.String("token_prefix", tokenPrefix(payload.Token)),
				zap.Error(err),
			)
		case messaging.IsQuotaExceeded(err):
			s.logger.Warn("FCM quota exceeded", zap.Error(err))
		}
		return "", fmt.Errorf("fcm send failed: %w", err)
	}
	return id, nil
}

func toFCMMessage(p *model.NotificationPayload) *messaging.Message {
	return &messaging.Message{
		Token: p.Token,
		Data:  p.Data,
		Notification: &messaging.Notification{
			Title: p.Notification.Title,
			Body:  p.Notification.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: p.Android.Priority,
			Notification: &messaging.AndroidNotification{
				Sound:     p.Android.Notification.Sound,
				ChannelID: p.Android.Notification.ChannelID,
			},
		},
	}
}

// --- Заглушка для FCM Sender ---

type stubFCMSender struct {
	logger *zap.Logger
}

// NewStubFCMSender logs payloads instead of sending them. Used for local runs
// without Firebase credentials.
func NewStubFCMSender(logger *zap.Logger) PushGateway {
	return &stubFCMSender{logger: logger.Named("stub_fcm_sender")}
}

func (s *stubFCMSender) Name() string { return "fcm_stub" }

func (s *stubFCMSender) Send(ctx context.Context, payload *model.NotificationPayload) (string, error) {
	id := "stub-" + uuid.NewString()
	s.logger.Info("STUB: FCM send",
		zap.String("token_prefix", tokenPrefix(payload.Token)),
		zap.String("title", payload.Notification.Title),
		zap.String("body", payload.Notification.Body),
		zap.Any("data", payload.Data),
		zap.String("message_id", id),
	)
	return id, nil
}

// tokenPrefix возвращает начало токена для логирования.
func tokenPrefix(token string) string {
	const prefixLen = 10
	if len(token) < prefixLen {
		return token
	}
	return token[:prefixLen] + "..."
}
