package ai

import (
	"errors"
	"fmt"
)

// Kind classifies a completion failure. The orchestrator logs the kind
// but never surfaces it to the user.
type Kind string

const (
	// KindAuth: the service rejected the credential (401).
	KindAuth Kind = "auth"
	// KindRateLimit: the service throttled the request (429).
	KindRateLimit Kind = "rate_limit"
	// KindBadRequest: the service reported malformed input (400).
	KindBadRequest Kind = "bad_request"
	// KindEndpoint: the completion endpoint was not found (404).
	KindEndpoint Kind = "endpoint"
	// KindService: any other non-success status.
	KindService Kind = "service"
	// KindNetwork: the request never reached the service.
	KindNetwork Kind = "network"
	// KindResponseFormat: a success response without a usable completion.
	KindResponseFormat Kind = "response_format"
)

// Error is a classified completion-client failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns err's classification, or empty when err is not a
// completion-client error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
