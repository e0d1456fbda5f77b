package chat

import "github.com/google/uuid"

// SeedState returns the first-run aggregate: a couple of simulated
// contacts and one AI assistant chat.
func SeedState() *State {
	st := NewState()
	st.Chats = []Chat{
		{
			ID:       uuid.New().String(),
			Name:     "Assistant",
			Avatar:   "🤖",
			IsOnline: true,
			Type:     TypeAI,
			Category: CategoryAIAssistants,
		},
		{
			ID:       uuid.New().String(),
			Name:     "Alice",
			Avatar:   "👩",
			IsOnline: true,
			Type:     TypeUser,
			Category: CategoryPeople,
		},
		{
			ID:       uuid.New().String(),
			Name:     "Bob",
			Avatar:   "👨",
			Type:     TypeUser,
			Category: CategoryPeople,
		},
	}
	return st
}

// NewAIChat builds a fresh AI assistant chat for the "new chat" action.
func NewAIChat(name string) Chat {
	if name == "" {
		name = "New AI Chat"
	}
	return Chat{
		ID:       uuid.New().String(),
		Name:     name,
		Avatar:   "🤖",
		IsOnline: true,
		Type:     TypeAI,
		Category: CategoryAIAssistants,
	}
}
