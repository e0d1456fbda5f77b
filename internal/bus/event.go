package bus

import "time"

// Event is a state-change notification published by the conversation store.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Event kinds published by the conversation store, one per applied
// transition. Subscribers filter by namespace prefix, e.g. "message."
// receives every message-level change.
const (
	KindChatsReplaced  = "chat.replaced"
	KindChatActivated  = "chat.activated"
	KindChatRead       = "chat.read"
	KindStateHydrated  = "chat.hydrated"
	KindMessageAdded   = "message.added"
	KindMessageStatus  = "message.status_changed"
	KindMessageReply   = "message.reply_flagged"
	KindFilterChats    = "filter.chats"
	KindFilterMessages = "filter.messages"
	KindDisplayMode    = "display.mode_toggled"
	KindTypingChanged  = "typing.changed"
)

// MessageRef identifies a message within a chat; payload for message events.
type MessageRef struct {
	ChatID    string
	MessageID string
}
