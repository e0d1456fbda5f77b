// Package ai wraps the chat-completion service behind a one-shot
// text-in, text-out client with a classified failure taxonomy.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultModel is the fixed completion model.
const DefaultModel = "gpt-3.5-turbo-0125"

// MissingKeyReply is returned as the assistant's answer when no API key
// is configured. Deliberately a reply, not an error: the chat stays
// usable and tells the user what to do.
const MissingKeyReply = "Please set up your OpenAI API key"

// Fixed sampling parameters, chosen for short, cheap replies.
const (
	systemPrompt = "You are a helpful assistant. Keep responses concise."
	maxTokens    = 150
	temperature  = 0.7
	penalty      = 0.6
)

// Completer produces an assistant reply for a single user message.
// Implementations perform no retries; retry policy belongs to the caller.
type Completer interface {
	Complete(ctx context.Context, text string) (string, error)
}

// Client talks to the OpenAI chat-completion endpoint.
type Client struct {
	api    *openai.Client
	apiKey string
	model  string
	logger *zap.Logger
}

// NewClient creates a completion client. An empty apiKey is allowed and
// degrades to the instructional reply; an empty model selects
// DefaultModel.
func NewClient(apiKey, model string, logger *zap.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:    openai.NewClient(apiKey),
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

// Complete sends text with the fixed persona and sampling parameters and
// returns the first candidate completion.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		c.logger.Warn("no API key configured, returning instructional reply")
		return MissingKeyReply, nil
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature:      temperature,
		MaxTokens:        maxTokens,
		PresencePenalty:  penalty,
		FrequencyPenalty: penalty,
	})
	if err != nil {
		cerr := classify(err)
		c.logger.Error("completion request failed",
			zap.String("kind", string(cerr.Kind)),
			zap.Error(err))
		return "", cerr
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &Error{Kind: KindResponseFormat, Msg: "response has no usable completion"}
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps transport and service failures onto the taxonomy.
func classify(err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return &Error{Kind: KindAuth, Msg: "authentication failed, check your API key", Err: err}
		case http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimit, Msg: "rate limit exceeded, try again in a few moments", Err: err}
		case http.StatusBadRequest:
			return &Error{Kind: KindBadRequest, Msg: "invalid request: " + apiErr.Message, Err: err}
		case http.StatusNotFound:
			return &Error{Kind: KindEndpoint, Msg: "completion endpoint not found", Err: err}
		default:
			return &Error{Kind: KindService, Msg: fmt.Sprintf("service error, status %d: %s", apiErr.HTTPStatusCode, apiErr.Message), Err: err}
		}
	}

	// Non-JSON error bodies surface as RequestError with the raw status.
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return &Error{Kind: KindAuth, Msg: "authentication failed, check your API key", Err: err}
		case http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimit, Msg: "rate limit exceeded, try again in a few moments", Err: err}
		case http.StatusNotFound:
			return &Error{Kind: KindEndpoint, Msg: "completion endpoint not found", Err: err}
		default:
			return &Error{Kind: KindService, Msg: fmt.Sprintf("service error, status %d", reqErr.HTTPStatusCode), Err: err}
		}
	}

	if isNetworkErr(err) {
		return &Error{Kind: KindNetwork, Msg: "network error, check your connection", Err: err}
	}
	// The request succeeded at the HTTP level but the body could not be
	// decoded as a completion.
	return &Error{Kind: KindResponseFormat, Msg: "malformed completion response", Err: err}
}

func isNetworkErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
