package model

// Android delivery hints sent with every chat notification.
const (
	AndroidPriorityHigh     = "high"
	AndroidSoundDefault     = "default"
	ChatNotificationChannel = "wink_chat_channel"
)

// Keys of the data map consumed by the mobile client.
const (
	DataKeyTitle  = "title"
	DataKeyBody   = "body"
	DataKeyChatID = "chatId"
)

// NotificationPayload - то, что уходит в push-шлюз для одного получателя.
type NotificationPayload struct {
	Token        string              `json:"token"`
	Data         map[string]string   `json:"data"`
	Notification NotificationContent `json:"notification"`
	Android      AndroidConfig       `json:"android"`
}

// NotificationContent is the OS-level visible part of the push.
type NotificationContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type AndroidConfig struct {
	Priority     string              `json:"priority"`
	Notification AndroidNotification `json:"notification"`
}

type AndroidNotification struct {
	Sound     string `json:"sound"`
	ChannelID string `json:"channelId"`
}
