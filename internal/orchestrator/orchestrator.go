// Package orchestrator drives the send path: optimistic local echo,
// cosmetic transport ack, and the asynchronous AI turn.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/telechat/telechat/internal/ai"
	"github.com/telechat/telechat/internal/chat"
	"github.com/telechat/telechat/internal/status"
)

// apology replaces any failed AI reply. The classified error is logged;
// the user never sees taxonomy details.
const apology = "Sorry, I encountered an error. Please try again."

const (
	defaultAckDelay       = time.Second
	defaultRequestTimeout = 30 * time.Second
)

// Store is the mutation surface the orchestrator drives.
type Store interface {
	ChatByID(id string) (chat.Chat, bool)
	MessagesFor(chatID string) []chat.Message
	AddMessage(chatID string, m chat.Message)
	UpdateMessageStatus(chatID, messageID string, to status.Status)
	ClearReplying(chatID string)
	BeginTyping(chatID string)
	EndTyping(chatID string)
}

// Options tunes the orchestrator's pacing.
type Options struct {
	// AckDelay is the local delay before a user message flips from
	// sending to sent. No transport backs it.
	AckDelay time.Duration
	// RequestTimeout bounds each completion call so a hung remote can
	// never leave the typing indicator stuck.
	RequestTimeout time.Duration
}

// Orchestrator applies user send intents to the store and reconciles
// asynchronous completion results back through the same transitions.
type Orchestrator struct {
	store     Store
	completer ai.Completer
	logger    *zap.Logger
	ackDelay  time.Duration
	timeout   time.Duration
}

// New creates an orchestrator. Zero Options fields fall back to defaults.
func New(store Store, completer ai.Completer, logger *zap.Logger, opts Options) *Orchestrator {
	if opts.AckDelay <= 0 {
		opts.AckDelay = defaultAckDelay
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:     store,
		completer: completer,
		logger:    logger,
		ackDelay:  opts.AckDelay,
		timeout:   opts.RequestTimeout,
	}
}

// Submit records a user message and, for AI chats, kicks off one
// completion turn. Non-blocking. Blank text or an empty chat id is a
// silent no-op. Rapid repeated submits produce independent in-flight
// turns whose replies append in settlement order, not send order.
func (o *Orchestrator) Submit(chatID, text, replyToID string) {
	if chatID == "" || strings.TrimSpace(text) == "" {
		return
	}

	msg := chat.Message{
		ID:        uuid.New().String(),
		Content:   text,
		Sender:    chat.SenderUser,
		Status:    status.Sending,
		Timestamp: time.Now().UnixMilli(),
	}
	if replyToID != "" {
		if ref, ok := o.resolveReply(chatID, replyToID); ok {
			msg.ReplyTo = &ref
		}
	}

	// Optimistic echo: visible immediately, acked by a local timer.
	o.store.AddMessage(chatID, msg)
	o.store.ClearReplying(chatID)
	time.AfterFunc(o.ackDelay, func() {
		o.store.UpdateMessageStatus(chatID, msg.ID, status.Sent)
	})

	target, ok := o.store.ChatByID(chatID)
	if !ok || target.Type != chat.TypeAI {
		return
	}

	o.store.BeginTyping(chatID)
	go o.completeTurn(chatID, text)
}

// completeTurn runs one completion call and appends exactly one AI
// message, reply or apology. The typing turn settles on every exit path.
func (o *Orchestrator) completeTurn(chatID, text string) {
	defer o.store.EndTyping(chatID)

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	reply, err := o.completer.Complete(ctx, text)
	if err != nil {
		o.logger.Error("AI turn failed",
			zap.String("chat_id", chatID),
			zap.String("kind", string(ai.KindOf(err))),
			zap.Error(err))
		reply = apology
	}

	o.store.AddMessage(chatID, chat.Message{
		ID:        uuid.New().String(),
		Content:   reply,
		Sender:    chat.SenderAI,
		Status:    status.Sent,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (o *Orchestrator) resolveReply(chatID, replyToID string) (chat.ReplyRef, bool) {
	for _, m := range o.store.MessagesFor(chatID) {
		if m.ID == replyToID {
			return chat.ReplyRef{ID: m.ID, Content: m.Content, Sender: m.Sender}, true
		}
	}
	return chat.ReplyRef{}, false
}
