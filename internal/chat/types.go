// Package chat holds the conversation aggregate and its transition set.
package chat

import "github.com/telechat/telechat/internal/status"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ChatType determines whether sending into a chat triggers the
// completion client.
type ChatType string

const (
	TypeUser ChatType = "user"
	TypeAI   ChatType = "ai"
)

// Category is a coarse grouping tag for the chat list.
type Category string

const (
	CategoryPeople       Category = "people"
	CategoryAIAssistants Category = "ai-assistants"
)

// ReplyRef is a by-value snapshot of a quoted message. It is copied when
// the reply is sent and never updated afterwards.
type ReplyRef struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Sender  Sender `json:"sender"`
}

// Message is a single entry in a conversation thread.
type Message struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Sender    Sender        `json:"sender"`
	Status    status.Status `json:"status"`
	Timestamp int64         `json:"timestamp"` // unix millis
	// IsReplying is a display-only flag set while the user composes a
	// reply to this message. Distinct from ReplyTo, which lives on the
	// reply itself.
	IsReplying bool      `json:"isReplying,omitempty"`
	ReplyTo    *ReplyRef `json:"replyTo,omitempty"`
}

// Chat is a conversation thread with a contact or an AI assistant.
type Chat struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Avatar   string   `json:"avatar,omitempty"`
	IsOnline bool     `json:"isOnline,omitempty"`
	Type     ChatType `json:"type"`
	Category Category `json:"category"`
	// LastMessage is denormalized for the chat list and refreshed
	// transactionally by AddMessage.
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int      `json:"unreadCount"`
}

// State is the conversation aggregate: every chat, every per-chat message
// list, the active selection and the transient filters. One instance
// exists per session; it is hydrated from persistence at startup and
// mutated only through Store transitions.
type State struct {
	Chats              []Chat               `json:"chats"`
	ActiveChat         string               `json:"activeChat,omitempty"`
	Messages           map[string][]Message `json:"messages"`
	SearchQuery        string               `json:"searchQuery,omitempty"`
	MessageSearchQuery string               `json:"messageSearchQuery,omitempty"`
	DarkMode           bool                 `json:"isDarkMode"`
	// Typing counts in-flight AI turns per chat; transient, never persisted.
	Typing map[string]int `json:"-"`
}

// NewState returns an empty aggregate with initialized maps.
func NewState() *State {
	return &State{
		Messages: make(map[string][]Message),
		Typing:   make(map[string]int),
	}
}

// Clone returns a deep copy safe to hand to subscribers and the
// persistence adapter.
func (s *State) Clone() *State {
	out := &State{
		Chats:              make([]Chat, len(s.Chats)),
		ActiveChat:         s.ActiveChat,
		Messages:           make(map[string][]Message, len(s.Messages)),
		SearchQuery:        s.SearchQuery,
		MessageSearchQuery: s.MessageSearchQuery,
		DarkMode:           s.DarkMode,
		Typing:             make(map[string]int, len(s.Typing)),
	}
	for i, c := range s.Chats {
		out.Chats[i] = cloneChat(c)
	}
	for id, msgs := range s.Messages {
		out.Messages[id] = cloneMessages(msgs)
	}
	for id, n := range s.Typing {
		out.Typing[id] = n
	}
	return out
}

func cloneChat(c Chat) Chat {
	if c.LastMessage != nil {
		last := cloneMessage(*c.LastMessage)
		c.LastMessage = &last
	}
	return c
}

func cloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = cloneMessage(m)
	}
	return out
}

func cloneMessage(m Message) Message {
	if m.ReplyTo != nil {
		ref := *m.ReplyTo
		m.ReplyTo = &ref
	}
	return m
}
