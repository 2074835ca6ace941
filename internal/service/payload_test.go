package service_test

import (
	"testing"

	"wink-server/internal/model"
	"wink-server/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestSenderDisplayName(t *testing.T) {
	assert.Equal(t, service.FallbackSenderName, service.SenderDisplayName(nil))
	assert.Equal(t, service.FallbackSenderName, service.SenderDisplayName(&model.User{}))
	assert.Equal(t, service.FallbackSenderName, service.SenderDisplayName(&model.User{Username: " \t"}))
	assert.Equal(t, "Alice", service.SenderDisplayName(&model.User{Username: "Alice"}))
}

func TestComposeBody(t *testing.T) {
	tests := []struct {
		name string
		msg  *model.ChatMessage
		want string
	}{
		{"nil message", nil, ""},
		{"nil media with text", &model.ChatMessage{Content: "plain", MediaURL: nil}, "plain"},
		{"text only", &model.ChatMessage{Content: "hello"}, "hello"},
		{"empty text", &model.ChatMessage{}, ""},
		{"empty media list", &model.ChatMessage{Content: "hi", MediaURL: []string{}}, "hi"},
		{"image with caption", &model.ChatMessage{Content: "look", MediaURL: []string{"https://a/1.jpg"}}, service.ImagePlaceholderBody},
		{"several images", &model.ChatMessage{MediaURL: []string{"https://a/1.jpg", "https://a/2.jpg"}}, service.ImagePlaceholderBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ComposeBody(tt.msg))
		})
	}
}

func TestBuildChatNotification(t *testing.T) {
	p := service.BuildChatNotification("tok", "chat-1", "Alice", "hey")

	assert.Equal(t, "tok", p.Token)
	assert.Equal(t, map[string]string{"title": "Alice", "body": "hey", "chatId": "chat-1"}, p.Data)
	assert.Equal(t, model.NotificationContent{Title: "Alice", Body: "hey"}, p.Notification)
	assert.Equal(t, "high", p.Android.Priority)
	assert.Equal(t, "default", p.Android.Notification.Sound)
	assert.Equal(t, "wink_chat_channel", p.Android.Notification.ChannelID)
}
