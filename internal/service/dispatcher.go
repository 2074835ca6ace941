package service

import (
	"context"
	"errors"
	"time"

	"wink-server/internal/model"

	"go.uber.org/zap"
)

// releaseTimeout ограничивает снятие метки после неудачной отправки.
const releaseTimeout = 5 * time.Second

// Dispatcher отправляет push получателю нового сообщения чата.
// Не хранит состояния между вызовами и безопасен для конкурентного использования.
type Dispatcher struct {
	users   UserReader
	gateway PushGateway
	marker  DeliveryMarker // nil = защита от дублей выключена
	metrics *Metrics
	logger  *zap.Logger
}

func NewDispatcher(users UserReader, gateway PushGateway, marker DeliveryMarker, metrics *Metrics, logger *zap.Logger) *Dispatcher {
	if marker == nil {
		logger.Info("Delivery marker disabled, duplicate trigger deliveries may produce duplicate pushes")
	}
	return &Dispatcher{
		users:   users,
		gateway: gateway,
		marker:  marker,
		metrics: metrics,
		logger:  logger.Named("dispatcher"),
	}
}

// HandleMessageCreated handles one chat-message creation event. It never
// returns an error: every failure is logged and reported as an Outcome.
func (d *Dispatcher) HandleMessageCreated(ctx context.Context, event *model.ChatMessageEvent) model.Outcome {
	start := time.Now()
	outcome := d.dispatch(ctx, event)
	d.metrics.observe(outcome, time.Since(start))
	return outcome
}

func (d *Dispatcher) dispatch(ctx context.Context, event *model.ChatMessageEvent) model.Outcome {
	if event == nil || event.Message == nil {
		d.logger.Info("No data associated with the event, nothing to send")
		return model.Skipped(model.OutcomeSkippedNoPayload)
	}

	msg := event.Message
	log := d.logger.With(
		zap.String("chat_id", event.ChatID),
		zap.String("message_id", event.MessageID),
		zap.String("receiver_id", msg.ReceiverID),
		zap.String("sender_id", msg.SenderID),
	)

	// 1. Получатель и его токен
	receiver, err := d.users.GetByID(ctx, msg.ReceiverID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			log.Info("Receiver not found, skipping notification")
			return model.Skipped(model.OutcomeSkippedNoReceiver)
		}
		log.Error("Failed to load receiver", zap.Error(err))
		return model.LookupFailed(err)
	}
	if !receiver.HasPushToken() {
		log.Info("Receiver has no FCM token, skipping notification")
		return model.Skipped(model.OutcomeSkippedNoToken)
	}

	// 2. Имя отправителя. Ошибка здесь не мешает отправке.
	senderName := d.resolveSenderName(ctx, msg.SenderID, log)

	payload := BuildChatNotification(receiver.PushToken(), event.ChatID, senderName, ComposeBody(msg))

	// 3. Отправка
	claimed := false
	if d.marker != nil {
		ok, err := d.marker.Claim(ctx, event.ChatID, event.MessageID)
		switch {
		case err != nil:
			log.Warn("Delivery marker unavailable, sending without duplicate protection", zap.Error(err))
		case !ok:
			log.Info("Notification for this message was already sent, skipping duplicate")
			return model.Skipped(model.OutcomeSkippedDuplicate)
		default:
			claimed = true
		}
	}

	providerID, err := d.gateway.Send(ctx, payload)
	if err != nil {
		log.Error("Error sending notification", zap.String("provider", d.gateway.Name()), zap.Error(err))
		if claimed {
			d.releaseMarker(ctx, event, log)
		}
		return model.SendFailed(err)
	}

	log.Info("Successfully sent message",
		zap.String("provider", d.gateway.Name()),
		zap.String("provider_message_id", providerID),
	)
	return model.Sent(providerID)
}

// releaseMarker снимает метку даже если контекст вызова уже истёк или отменён,
// иначе повторная доставка события была бы принята за дубль.
func (d *Dispatcher) releaseMarker(ctx context.Context, event *model.ChatMessageEvent, log *zap.Logger) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := d.marker.Release(releaseCtx, event.ChatID, event.MessageID); err != nil {
		log.Warn("Failed to release delivery marker", zap.Error(err))
	}
}

func (d *Dispatcher) resolveSenderName(ctx context.Context, senderID string, log *zap.Logger) string {
	sender, err := d.users.GetByID(ctx, senderID)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			log.Warn("Failed to load sender, using fallback name", zap.Error(err))
		}
		return FallbackSenderName
	}
	return SenderDisplayName(sender)
}
