package service

import (
	"strings"

	"wink-server/internal/model"
)

const (
	// FallbackSenderName подставляется, если имя отправителя узнать не удалось.
	FallbackSenderName = "Someone"
	// ImagePlaceholderBody заменяет текст сообщения, если к нему приложены изображения.
	ImagePlaceholderBody = "📷 Image"
)

// SenderDisplayName returns the sender's username, or FallbackSenderName when the
// user is unknown or unnamed.
func SenderDisplayName(sender *model.User) string {
	if sender == nil || strings.TrimSpace(sender.Username) == "" {
		return FallbackSenderName
	}
	return sender.Username
}

// ComposeBody: изображения важнее подписи, иначе текст уходит как есть.
func ComposeBody(msg *model.ChatMessage) string {
	if msg == nil {
		return ""
	}
	if msg.HasMedia() {
		return ImagePlaceholderBody
	}
	return msg.Content
}

// BuildChatNotification assembles the payload for a single receiver token.
func BuildChatNotification(token, chatID, title, body string) *model.NotificationPayload {
	return &model.NotificationPayload{
		Token: token,
		Data: map[string]string{
			model.DataKeyTitle:  title,
			model.DataKeyBody:   body,
			model.DataKeyChatID: chatID,
		},
		Notification: model.NotificationContent{
			Title: title,
			Body:  body,
		},
		Android: model.AndroidConfig{
			Priority: model.AndroidPriorityHigh,
			Notification: model.AndroidNotification{
				Sound:     model.AndroidSoundDefault,
				ChannelID: model.ChatNotificationChannel,
			},
		},
	}
}
