// Package status defines the message delivery lifecycle.
package status

import "slices"

// Status represents a message delivery state.
type Status string

const (
	// Sending is the initial state of every user-authored message. The
	// transition to Sent happens on a local timer; no transport backs it.
	Sending Status = "sending"
	// Sent means the message was accepted. AI replies are created
	// directly in this state since they only exist once the remote call
	// has already settled.
	Sent Status = "sent"
	// Delivered and Read are produced when the user opens a chat; there
	// is no peer to acknowledge anything in a single-user client.
	Delivered Status = "delivered"
	Read      Status = "read"
	// Error is terminal and reachable only from Sending.
	Error Status = "error"
)

// validTransitions defines the one-directional lifecycle. A status never
// moves backwards.
var validTransitions = map[Status][]Status{
	Sending:   {Sent, Error},
	Sent:      {Delivered},
	Delivered: {Read},
	Read:      {},
	Error:     {},
}

// Valid reports whether a message may move from one status to another.
func Valid(from, to Status) bool {
	return slices.Contains(validTransitions[from], to)
}

// Terminal reports whether no further transition is possible.
func Terminal(s Status) bool {
	return len(validTransitions[s]) == 0
}

// Known reports whether s is one of the defined statuses.
func Known(s Status) bool {
	_, ok := validTransitions[s]
	return ok
}
