package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/telechat/telechat/internal/bus"
	"github.com/telechat/telechat/internal/status"
)

// Saver receives a snapshot after every applied transition. The snapshot
// is a deep copy owned by the callee. Implementations are expected to be
// best-effort and must not fail the caller.
type Saver interface {
	Save(*State)
}

// Store owns the conversation aggregate. Transitions are applied
// atomically under a single mutex; each applied transition produces
// exactly one bus event and one write-through save. Transitions whose
// precondition fails (unknown message id, invalid status move) leave the
// state structurally unchanged and publish nothing.
type Store struct {
	mu    sync.Mutex
	state *State
	saver Saver
	bus   *bus.Bus
}

// NewStore creates an empty store. Both b and saver may be nil (tests).
func NewStore(b *bus.Bus, saver Saver) *Store {
	return &Store{
		state: NewState(),
		saver: saver,
		bus:   b,
	}
}

// apply runs fn under the store lock. When fn reports a change, the
// snapshot is written through to the saver and one event is published,
// still under the lock: concurrently settling transitions must reach
// the saver in application order or an older snapshot could land last.
func (s *Store) apply(kind string, payload any, fn func(st *State) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn(s.state) {
		return
	}
	if s.saver != nil {
		s.saver.Save(s.state.Clone())
	}
	if s.bus != nil {
		s.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
	}
}

// Hydrate replaces the aggregate wholesale, normally once at startup
// with the persisted snapshot or the seed state.
func (s *Store) Hydrate(st *State) {
	s.apply(bus.KindStateHydrated, nil, func(cur *State) bool {
		if st.Messages == nil {
			st.Messages = make(map[string][]Message)
		}
		// Typing never survives a restart.
		st.Typing = make(map[string]int)
		*cur = *st.Clone()
		return true
	})
}

// SetChats replaces the chat collection wholesale.
func (s *Store) SetChats(chats []Chat) {
	s.apply(bus.KindChatsReplaced, len(chats), func(st *State) bool {
		st.Chats = make([]Chat, len(chats))
		for i, c := range chats {
			st.Chats[i] = cloneChat(c)
		}
		return true
	})
}

// SetActiveChat replaces the active selection. No existence check is
// performed; a dangling id simply selects an empty thread.
func (s *Store) SetActiveChat(id string) {
	s.apply(bus.KindChatActivated, id, func(st *State) bool {
		st.ActiveChat = id
		return true
	})
}

// AddMessage appends a message to the chat's thread, creating the thread
// if absent. The chat's denormalized last-message pointer is refreshed in
// the same transition, and the unread count is bumped when an AI message
// lands in a chat that is not currently open.
func (s *Store) AddMessage(chatID string, m Message) {
	m2 := cloneMessage(m)
	s.apply(bus.KindMessageAdded, bus.MessageRef{ChatID: chatID, MessageID: m.ID}, func(st *State) bool {
		st.Messages[chatID] = append(st.Messages[chatID], m2)
		for i := range st.Chats {
			if st.Chats[i].ID != chatID {
				continue
			}
			last := cloneMessage(m2)
			st.Chats[i].LastMessage = &last
			if m2.Sender == SenderAI && st.ActiveChat != chatID {
				st.Chats[i].UnreadCount++
			}
			break
		}
		return true
	})
}

// UpdateMessageStatus replaces a message's status. A no-op when the
// message does not exist or the move violates the delivery lifecycle.
func (s *Store) UpdateMessageStatus(chatID, messageID string, to status.Status) {
	s.apply(bus.KindMessageStatus, bus.MessageRef{ChatID: chatID, MessageID: messageID}, func(st *State) bool {
		msgs := st.Messages[chatID]
		for i := range msgs {
			if msgs[i].ID != messageID {
				continue
			}
			if !status.Valid(msgs[i].Status, to) {
				return false
			}
			msgs[i].Status = to
			if last := chatLast(st, chatID); last != nil && last.ID == messageID {
				last.Status = to
			}
			return true
		}
		return false
	})
}

// MarkReplying flags a message as the current reply target. State is
// unchanged when the message does not exist. The flag on any other
// message in the chat is cleared so at most one target is armed.
func (s *Store) MarkReplying(chatID, messageID string) {
	s.apply(bus.KindMessageReply, bus.MessageRef{ChatID: chatID, MessageID: messageID}, func(st *State) bool {
		msgs := st.Messages[chatID]
		found := false
		for i := range msgs {
			if msgs[i].ID == messageID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
		for i := range msgs {
			msgs[i].IsReplying = msgs[i].ID == messageID
		}
		return true
	})
}

// ClearReplying drops the reply target flag in a chat, if any.
func (s *Store) ClearReplying(chatID string) {
	s.apply(bus.KindMessageReply, bus.MessageRef{ChatID: chatID}, func(st *State) bool {
		changed := false
		msgs := st.Messages[chatID]
		for i := range msgs {
			if msgs[i].IsReplying {
				msgs[i].IsReplying = false
				changed = true
			}
		}
		return changed
	})
}

// MarkChatRead zeroes the chat's unread count and walks counterpart
// messages forward through delivered to read. This is the only producer
// of the delivered and read statuses: viewing a chat acknowledges it.
func (s *Store) MarkChatRead(chatID string) {
	s.apply(bus.KindChatRead, chatID, func(st *State) bool {
		changed := false
		msgs := st.Messages[chatID]
		for i := range msgs {
			if msgs[i].Sender != SenderAI {
				continue
			}
			if status.Valid(msgs[i].Status, status.Delivered) {
				msgs[i].Status = status.Delivered
				changed = true
			}
			if status.Valid(msgs[i].Status, status.Read) {
				msgs[i].Status = status.Read
				changed = true
			}
		}
		for i := range st.Chats {
			if st.Chats[i].ID == chatID && st.Chats[i].UnreadCount != 0 {
				st.Chats[i].UnreadCount = 0
				changed = true
			}
		}
		return changed
	})
}

// SetSearchQuery replaces the chat list filter.
func (s *Store) SetSearchQuery(q string) {
	s.apply(bus.KindFilterChats, q, func(st *State) bool {
		st.SearchQuery = q
		return true
	})
}

// SetMessageSearchQuery replaces the in-chat message filter.
func (s *Store) SetMessageSearchQuery(q string) {
	s.apply(bus.KindFilterMessages, q, func(st *State) bool {
		st.MessageSearchQuery = q
		return true
	})
}

// ToggleDarkMode flips the display mode flag.
func (s *Store) ToggleDarkMode() {
	s.apply(bus.KindDisplayMode, nil, func(st *State) bool {
		st.DarkMode = !st.DarkMode
		return true
	})
}

// BeginTyping marks one more in-flight AI turn for the chat.
func (s *Store) BeginTyping(chatID string) {
	s.apply(bus.KindTypingChanged, chatID, func(st *State) bool {
		st.Typing[chatID]++
		return true
	})
}

// EndTyping settles one in-flight AI turn for the chat.
func (s *Store) EndTyping(chatID string) {
	s.apply(bus.KindTypingChanged, chatID, func(st *State) bool {
		n := st.Typing[chatID]
		if n <= 1 {
			delete(st.Typing, chatID)
		} else {
			st.Typing[chatID] = n - 1
		}
		return n > 0
	})
}

func chatLast(st *State, chatID string) *Message {
	for i := range st.Chats {
		if st.Chats[i].ID == chatID {
			return st.Chats[i].LastMessage
		}
	}
	return nil
}

// Snapshot returns a deep copy of the aggregate.
func (s *Store) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Chats returns a copy of the chat collection in insertion order.
func (s *Store) Chats() []Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Chat, len(s.state.Chats))
	for i, c := range s.state.Chats {
		out[i] = cloneChat(c)
	}
	return out
}

// ChatByID looks up a chat by id.
func (s *Store) ChatByID(id string) (Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.Chats {
		if c.ID == id {
			return cloneChat(c), true
		}
	}
	return Chat{}, false
}

// ActiveChat returns the current selection, possibly empty.
func (s *Store) ActiveChat() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ActiveChat
}

// MessagesFor returns a copy of a chat's thread in send order.
func (s *Store) MessagesFor(chatID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.state.Messages[chatID])
}

// TypingIn reports whether at least one AI turn is in flight for the chat.
func (s *Store) TypingIn(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Typing[chatID] > 0
}

// DarkMode returns the display mode flag.
func (s *Store) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DarkMode
}

// FilteredChats applies the chat list filter: case-insensitive substring
// match on the name or the last message preview.
func (s *Store) FilteredChats() []Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(s.state.SearchQuery))
	out := make([]Chat, 0, len(s.state.Chats))
	for _, c := range s.state.Chats {
		if q != "" && !matchesChat(c, q) {
			continue
		}
		out = append(out, cloneChat(c))
	}
	return out
}

// FilteredMessages applies the message filter to a chat's thread.
func (s *Store) FilteredMessages(chatID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(s.state.MessageSearchQuery))
	msgs := s.state.Messages[chatID]
	if q == "" {
		return cloneMessages(msgs)
	}
	var out []Message
	for _, m := range msgs {
		if strings.Contains(strings.ToLower(m.Content), q) {
			out = append(out, cloneMessage(m))
		}
	}
	return out
}

func matchesChat(c Chat, q string) bool {
	if strings.Contains(strings.ToLower(c.Name), q) {
		return true
	}
	return c.LastMessage != nil && strings.Contains(strings.ToLower(c.LastMessage.Content), q)
}
