package orchestrator

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/telechat/telechat/internal/ai"
	"github.com/telechat/telechat/internal/chat"
	"github.com/telechat/telechat/internal/status"
)

// mockCompleter records calls and returns configurable results.
type mockCompleter struct {
	mu      sync.Mutex
	calls   []string
	reply   string
	err     error
	delay   time.Duration
	replyFn func(text string) (string, error)
}

func (m *mockCompleter) Complete(_ context.Context, text string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.replyFn != nil {
		return m.replyFn(text)
	}
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockCompleter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func testStore(t *testing.T) (*chat.Store, string, string) {
	t.Helper()
	s := chat.NewStore(nil, nil)
	s.SetChats([]chat.Chat{
		{ID: "ai-1", Name: "Assistant", Type: chat.TypeAI, Category: chat.CategoryAIAssistants},
		{ID: "user-1", Name: "Alice", Type: chat.TypeUser, Category: chat.CategoryPeople},
	})
	return s, "ai-1", "user-1"
}

func newTestOrchestrator(s *chat.Store, m *mockCompleter) *Orchestrator {
	return New(s, m, zap.NewNop(), Options{
		AckDelay:       10 * time.Millisecond,
		RequestTimeout: 2 * time.Second,
	})
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func TestSubmitBlankIsNoop(t *testing.T) {
	s, aiChat, _ := testStore(t)
	mock := &mockCompleter{reply: "hi"}
	o := newTestOrchestrator(s, mock)
	before := s.Snapshot()

	o.Submit(aiChat, "", "")
	o.Submit(aiChat, "   \t\n", "")
	o.Submit("", "hello", "")

	time.Sleep(50 * time.Millisecond)
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Error("blank submit mutated state")
	}
	if mock.callCount() != 0 {
		t.Errorf("completer called %d times, want 0", mock.callCount())
	}
}

func TestSubmitAISuccess(t *testing.T) {
	s, aiChat, _ := testStore(t)
	mock := &mockCompleter{reply: "Hi there!"}
	o := newTestOrchestrator(s, mock)

	o.Submit(aiChat, "Hello", "")

	waitFor(t, "two messages", func() bool { return len(s.MessagesFor(aiChat)) == 2 })
	waitFor(t, "user message acked", func() bool {
		return s.MessagesFor(aiChat)[0].Status == status.Sent
	})

	msgs := s.MessagesFor(aiChat)
	if msgs[0].Sender != chat.SenderUser || msgs[0].Content != "Hello" {
		t.Errorf("first message = %+v, want user/Hello", msgs[0])
	}
	if msgs[1].Sender != chat.SenderAI || msgs[1].Content != "Hi there!" {
		t.Errorf("second message = %+v, want ai/Hi there!", msgs[1])
	}
	if msgs[1].Status != status.Sent {
		t.Errorf("AI message status = %s, want sent (no sending phase)", msgs[1].Status)
	}
	if s.TypingIn(aiChat) {
		t.Error("typing indicator still up after settlement")
	}
	if mock.callCount() != 1 {
		t.Errorf("completer called %d times, want 1", mock.callCount())
	}
}

func TestSubmitUserChatSkipsCompletion(t *testing.T) {
	s, _, userChat := testStore(t)
	mock := &mockCompleter{reply: "hi"}
	o := newTestOrchestrator(s, mock)

	o.Submit(userChat, "Hello", "")

	waitFor(t, "message acked", func() bool {
		msgs := s.MessagesFor(userChat)
		return len(msgs) == 1 && msgs[0].Status == status.Sent
	})
	time.Sleep(50 * time.Millisecond)

	if got := len(s.MessagesFor(userChat)); got != 1 {
		t.Errorf("got %d messages, want 1 (no AI reply in a user chat)", got)
	}
	if mock.callCount() != 0 {
		t.Errorf("completer called %d times, want 0", mock.callCount())
	}
	if s.TypingIn(userChat) {
		t.Error("typing indicator set for a user chat")
	}
}

func TestSubmitFailureAppendsApology(t *testing.T) {
	s, aiChat, _ := testStore(t)
	mock := &mockCompleter{err: &ai.Error{Kind: ai.KindAuth, Msg: "authentication failed"}}
	o := newTestOrchestrator(s, mock)

	o.Submit(aiChat, "Hello", "")

	waitFor(t, "apology message", func() bool { return len(s.MessagesFor(aiChat)) == 2 })

	msgs := s.MessagesFor(aiChat)
	if msgs[1].Sender != chat.SenderAI {
		t.Errorf("second message sender = %s, want ai", msgs[1].Sender)
	}
	if msgs[1].Content != apology {
		t.Errorf("content = %q, want the fixed apology", msgs[1].Content)
	}
	if msgs[1].Status != status.Sent {
		t.Errorf("apology status = %s, want sent", msgs[1].Status)
	}
	if s.TypingIn(aiChat) {
		t.Error("typing indicator stuck after failure")
	}
}

func TestApologyForEveryFailureKind(t *testing.T) {
	kinds := []ai.Kind{
		ai.KindAuth, ai.KindRateLimit, ai.KindBadRequest, ai.KindEndpoint,
		ai.KindService, ai.KindNetwork, ai.KindResponseFormat,
	}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			s, aiChat, _ := testStore(t)
			mock := &mockCompleter{err: &ai.Error{Kind: kind, Msg: "detail that must not leak"}}
			o := newTestOrchestrator(s, mock)

			o.Submit(aiChat, "Hello", "")

			waitFor(t, "apology", func() bool { return len(s.MessagesFor(aiChat)) == 2 })
			got := s.MessagesFor(aiChat)[1].Content
			if got != apology {
				t.Errorf("content = %q, error detail leaked", got)
			}
			if s.TypingIn(aiChat) {
				t.Error("typing indicator stuck")
			}
		})
	}
}

func TestTypingIndicatorLifecycle(t *testing.T) {
	s, aiChat, _ := testStore(t)
	mock := &mockCompleter{reply: "hi", delay: 200 * time.Millisecond}
	o := newTestOrchestrator(s, mock)

	if s.TypingIn(aiChat) {
		t.Fatal("typing before any submit")
	}

	o.Submit(aiChat, "Hello", "")

	waitFor(t, "typing to start", func() bool { return s.TypingIn(aiChat) })
	waitFor(t, "typing to settle", func() bool {
		return !s.TypingIn(aiChat) && len(s.MessagesFor(aiChat)) == 2
	})
}

func TestConcurrentSubmits(t *testing.T) {
	s, aiChat, _ := testStore(t)
	mock := &mockCompleter{
		delay: 50 * time.Millisecond,
		replyFn: func(text string) (string, error) {
			return "re: " + text, nil
		},
	}
	o := newTestOrchestrator(s, mock)

	o.Submit(aiChat, "one", "")
	o.Submit(aiChat, "two", "")

	waitFor(t, "four messages", func() bool { return len(s.MessagesFor(aiChat)) == 4 })

	var users, ais []string
	for _, m := range s.MessagesFor(aiChat) {
		switch m.Sender {
		case chat.SenderUser:
			users = append(users, m.Content)
		case chat.SenderAI:
			ais = append(ais, m.Content)
		}
	}
	if len(users) != 2 || len(ais) != 2 {
		t.Fatalf("got %d user / %d ai messages, want 2/2", len(users), len(ais))
	}
	// Reply order among concurrent turns is unspecified: compare as sets.
	want := map[string]bool{"re: one": true, "re: two": true}
	for _, content := range ais {
		if !want[content] {
			t.Errorf("unexpected AI reply %q", content)
		}
		delete(want, content)
	}
	if len(want) != 0 {
		t.Errorf("missing AI replies: %v", want)
	}
	if s.TypingIn(aiChat) {
		t.Error("typing indicator stuck after both turns settled")
	}
}

func TestReplySnapshotAttached(t *testing.T) {
	s, aiChat, _ := testStore(t)
	s.AddMessage(aiChat, chat.Message{ID: "orig", Content: "original text", Sender: chat.SenderAI, Status: status.Sent, Timestamp: 1})
	mock := &mockCompleter{reply: "ok"}
	o := newTestOrchestrator(s, mock)

	o.Submit(aiChat, "replying to you", "orig")

	waitFor(t, "user message", func() bool { return len(s.MessagesFor(aiChat)) >= 2 })
	msgs := s.MessagesFor(aiChat)
	m := msgs[1]
	if m.ReplyTo == nil {
		t.Fatal("reply snapshot missing")
	}
	if m.ReplyTo.ID != "orig" || m.ReplyTo.Content != "original text" || m.ReplyTo.Sender != chat.SenderAI {
		t.Errorf("reply snapshot = %+v", m.ReplyTo)
	}
}

func TestReplyToUnknownMessageIgnored(t *testing.T) {
	s, aiChat, _ := testStore(t)
	mock := &mockCompleter{reply: "ok"}
	o := newTestOrchestrator(s, mock)

	o.Submit(aiChat, "hello", "no-such-id")

	waitFor(t, "user message", func() bool { return len(s.MessagesFor(aiChat)) >= 1 })
	if s.MessagesFor(aiChat)[0].ReplyTo != nil {
		t.Error("reply snapshot attached for unknown target")
	}
}

func TestSubmitClearsReplyFlag(t *testing.T) {
	s, aiChat, _ := testStore(t)
	s.AddMessage(aiChat, chat.Message{ID: "orig", Content: "original", Sender: chat.SenderAI, Status: status.Sent, Timestamp: 1})
	s.MarkReplying(aiChat, "orig")
	mock := &mockCompleter{reply: "ok"}
	o := newTestOrchestrator(s, mock)

	o.Submit(aiChat, "the reply", "orig")

	waitFor(t, "flag cleared", func() bool {
		for _, m := range s.MessagesFor(aiChat) {
			if m.IsReplying {
				return false
			}
		}
		return true
	})
}

func TestUnknownChatGetsEchoOnly(t *testing.T) {
	s, _, _ := testStore(t)
	mock := &mockCompleter{reply: "hi"}
	o := newTestOrchestrator(s, mock)

	o.Submit("never-seen", "hello", "")

	waitFor(t, "echo", func() bool { return len(s.MessagesFor("never-seen")) == 1 })
	time.Sleep(50 * time.Millisecond)
	if mock.callCount() != 0 {
		t.Error("completer called for a chat with no known type")
	}
}
