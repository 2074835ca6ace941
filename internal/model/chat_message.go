package model

// ChatMessage - документ chats/{chatId}/messages/{messageId}.
// Диспетчер только читает его.
type ChatMessage struct {
	ChatID     string   `json:"chatId" firestore:"-"`
	MessageID  string   `json:"messageId" firestore:"-"`
	SenderID   string   `json:"senderId" firestore:"senderId"`
	ReceiverID string   `json:"receiverId" firestore:"receiverId"`
	Content    string   `json:"content" firestore:"content"`
	MediaURL   []string `json:"mediaUrl,omitempty" firestore:"mediaUrl,omitempty"`
}

// HasMedia сообщает, содержит ли сообщение хотя бы одно изображение.
func (m *ChatMessage) HasMedia() bool {
	return m != nil && len(m.MediaURL) > 0
}

// ChatMessageEvent - декодированное событие создания сообщения.
// Message == nil, если событие пришло без снапшота документа.
type ChatMessageEvent struct {
	ChatID    string
	MessageID string
	Message   *ChatMessage
}
