// Package keys dispatches key events to named actions scoped to the
// client's pages.
package keys

import "github.com/gdamore/tcell/v2"

// View identifies a page of the client that bindings are scoped to.
type View string

const (
	// ViewChats is the filterable chat list.
	ViewChats View = "chats"
	// ViewChat is the open thread with the composer.
	ViewChat View = "chat"
	// ViewSearch is the in-chat message search.
	ViewSearch View = "search"
)

// Action represents a keybinding action.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Description string
	Handler     func()
	Visible     bool
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

type binding struct {
	name   string
	action *Action
}

// Registry holds keybindings in registration order, globally and per
// view. View bindings shadow global ones for the same key.
type Registry struct {
	global []binding
	views  map[View][]binding
}

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{
		views: make(map[View][]binding),
	}
}

// AddGlobal registers a keybinding active on every view. Re-registering
// a name replaces the earlier action in place.
func (r *Registry) AddGlobal(name string, action *Action) {
	r.global = upsert(r.global, name, action)
}

// AddView registers a keybinding active on one view only.
func (r *Registry) AddView(view View, name string, action *Action) {
	r.views[view] = upsert(r.views[view], name, action)
}

func upsert(bindings []binding, name string, action *Action) []binding {
	for i := range bindings {
		if bindings[i].name == name {
			bindings[i].action = action
			return bindings
		}
	}
	return append(bindings, binding{name: name, action: action})
}

// Hints returns visible keybinding descriptions for a view, global
// bindings first, each group in registration order.
func (r *Registry) Hints(view View) []string {
	var hints []string
	for _, b := range r.global {
		if b.action.Visible {
			hints = append(hints, b.action.Description)
		}
	}
	for _, b := range r.views[view] {
		if b.action.Visible {
			hints = append(hints, b.action.Description)
		}
	}
	return hints
}

// HandleEvent dispatches a key event to the first matching action on
// the view, checking view bindings before global ones. Returns true if
// a handler ran.
func (r *Registry) HandleEvent(view View, ev *tcell.EventKey) bool {
	for _, b := range r.views[view] {
		if b.action.Matches(ev) {
			b.action.Handler()
			return true
		}
	}
	for _, b := range r.global {
		if b.action.Matches(ev) {
			b.action.Handler()
			return true
		}
	}
	return false
}
