package trigger_test

import (
	"testing"

	"wink-server/internal/trigger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const imageMessageEvent = `{
  "oldValue": {},
  "value": {
    "name": "projects/wink-app/databases/(default)/documents/chats/chat-1/messages/msg-9",
    "createTime": "2024-05-01T10:00:00.000000Z",
    "updateTime": "2024-05-01T10:00:00.000000Z",
    "fields": {
      "senderId":   {"stringValue": "alice"},
      "receiverId": {"stringValue": "bob"},
      "content":    {"stringValue": "look at this"},
      "mediaUrl":   {"arrayValue": {"values": [
        {"stringValue": "https://cdn.wink.app/a.jpg"},
        {"stringValue": "https://cdn.wink.app/b.jpg"}
      ]}}
    }
  },
  "updateMask": {}
}`

func TestDecode_FullMessage(t *testing.T) {
	ev, err := trigger.Decode([]byte(imageMessageEvent))
	require.NoError(t, err)
	require.NotNil(t, ev.Message)

	assert.Equal(t, "chat-1", ev.ChatID)
	assert.Equal(t, "msg-9", ev.MessageID)
	assert.Equal(t, "alice", ev.Message.SenderID)
	assert.Equal(t, "bob", ev.Message.ReceiverID)
	assert.Equal(t, "look at this", ev.Message.Content)
	assert.Equal(t, []string{"https://cdn.wink.app/a.jpg", "https://cdn.wink.app/b.jpg"}, ev.Message.MediaURL)
	assert.True(t, ev.Message.HasMedia())
}

func TestDecode_TextOnlyWithoutMedia(t *testing.T) {
	body := `{"value":{"name":"chats/c/messages/m","fields":{
		"senderId":{"stringValue":"a"},"receiverId":{"stringValue":"b"},
		"content":{"stringValue":"hello"},"mediaUrl":{"arrayValue":{}}}}}`

	ev, err := trigger.Decode([]byte(body))
	require.NoError(t, err)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "hello", ev.Message.Content)
	assert.Empty(t, ev.Message.MediaURL)
	assert.False(t, ev.Message.HasMedia())
}

func TestDecode_NoSnapshot(t *testing.T) {
	for name, body := range map[string]string{
		"empty object": `{}`,
		"no name":      `{"value":{"fields":{}}}`,
		"null value":   `{"value":null}`,
	} {
		t.Run(name, func(t *testing.T) {
			ev, err := trigger.Decode([]byte(body))
			require.NoError(t, err)
			assert.Nil(t, ev.Message)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := trigger.Decode([]byte(`{not json`))
	assert.ErrorIs(t, err, trigger.ErrMalformedEvent)

	_, err = trigger.Decode([]byte(`{"value":{"name":"projects/p/databases/(default)/documents/users/u1"}}`))
	assert.ErrorIs(t, err, trigger.ErrUnexpectedDocumentPath)
}

func TestParseMessagePath(t *testing.T) {
	chatID, messageID, err := trigger.ParseMessagePath("projects/p/databases/(default)/documents/chats/abc/messages/xyz")
	require.NoError(t, err)
	assert.Equal(t, "abc", chatID)
	assert.Equal(t, "xyz", messageID)

	chatID, messageID, err = trigger.ParseMessagePath("/chats/abc/messages/xyz/")
	require.NoError(t, err)
	assert.Equal(t, "abc", chatID)
	assert.Equal(t, "xyz", messageID)

	for _, bad := range []string{
		"chats/abc",
		"chats//messages/xyz",
		"groups/abc/messages/xyz",
		"chats/abc/messages/xyz/reactions/r1",
	} {
		_, _, err := trigger.ParseMessagePath(bad)
		assert.ErrorIs(t, err, trigger.ErrUnexpectedDocumentPath, bad)
	}
}
