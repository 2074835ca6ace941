// Package trigger decodes Firestore document-created events into chat-message events.
package trigger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"wink-server/internal/model"
)

var (
	ErrMalformedEvent         = errors.New("malformed firestore event")
	ErrUnexpectedDocumentPath = errors.New("document path does not match chats/{chatId}/messages/{messageId}")
)

const (
	chatsCollection    = "chats"
	messagesCollection = "messages"
	documentsMarker    = "/documents/"
)

// FirestoreEvent - формат события документа Firestore, который присылает платформа.
type FirestoreEvent struct {
	OldValue   *FirestoreValue `json:"oldValue,omitempty"`
	Value      *FirestoreValue `json:"value,omitempty"`
	UpdateMask *UpdateMask     `json:"updateMask,omitempty"`
}

type UpdateMask struct {
	FieldPaths []string `json:"fieldPaths"`
}

type FirestoreValue struct {
	CreateTime time.Time        `json:"createTime"`
	Fields     map[string]Value `json:"fields"`
	Name       string           `json:"name"`
	UpdateTime time.Time        `json:"updateTime"`
}

// Value - типизированное значение поля в REST-представлении Firestore.
// Поддерживаются только типы, встречающиеся в сообщениях чата.
type Value struct {
	StringValue  *string     `json:"stringValue,omitempty"`
	ArrayValue   *ArrayValue `json:"arrayValue,omitempty"`
	NullValue    *string     `json:"nullValue,omitempty"`
	BooleanValue *bool       `json:"booleanValue,omitempty"`
	IntegerValue *string     `json:"integerValue,omitempty"`
}

type ArrayValue struct {
	Values []Value `json:"values"`
}

// Decode parses a raw event body. An event without a document snapshot is not an
// error: it yields an event whose Message is nil.
func Decode(body []byte) (*model.ChatMessageEvent, error) {
	var ev FirestoreEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return ev.ChatMessageEvent()
}

// ChatMessageEvent converts the snapshot in Value to a model event.
func (e *FirestoreEvent) ChatMessageEvent() (*model.ChatMessageEvent, error) {
	if e == nil || e.Value == nil || e.Value.Name == "" {
		return &model.ChatMessageEvent{}, nil
	}

	chatID, messageID, err := ParseMessagePath(e.Value.Name)
	if err != nil {
		return nil, err
	}

	fields := e.Value.Fields
	msg := &model.ChatMessage{
		ChatID:     chatID,
		MessageID:  messageID,
		SenderID:   fields["senderId"].String(),
		ReceiverID: fields["receiverId"].String(),
		Content:    fields["content"].String(),
		MediaURL:   fields["mediaUrl"].Strings(),
	}

	return &model.ChatMessageEvent{
		ChatID:    chatID,
		MessageID: messageID,
		Message:   msg,
	}, nil
}

// ParseMessagePath извлекает chatId и messageId из полного имени документа
// (projects/{p}/databases/{db}/documents/chats/{chatId}/messages/{messageId})
// или из относительного пути chats/{chatId}/messages/{messageId}.
func ParseMessagePath(name string) (chatID, messageID string, err error) {
	rel := name
	if idx := strings.Index(name, documentsMarker); idx >= 0 {
		rel = name[idx+len(documentsMarker):]
	}
	parts := strings.Split(strings.Trim(rel, "/"), "/")
	if len(parts) != 4 || parts[0] != chatsCollection || parts[2] != messagesCollection ||
		parts[1] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrUnexpectedDocumentPath, name)
	}
	return parts[1], parts[3], nil
}

// String returns the string payload of the value, or "" for other types.
func (v Value) String() string {
	if v.StringValue == nil {
		return ""
	}
	return *v.StringValue
}

// Strings returns the string elements of an array value in order; non-string
// elements are skipped.
func (v Value) Strings() []string {
	if v.ArrayValue == nil || len(v.ArrayValue.Values) == 0 {
		return nil
	}
	out := make([]string, 0, len(v.ArrayValue.Values))
	for _, item := range v.ArrayValue.Values {
		if item.StringValue != nil {
			out = append(out, *item.StringValue)
		}
	}
	return out
}
