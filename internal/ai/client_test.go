package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

func testClient(srvURL string) *Client {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srvURL + "/v1"
	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		apiKey: "test-key",
		model:  DefaultModel,
		logger: zap.NewNop(),
	}
}

func completionBody(content string) string {
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"` + DefaultModel + `",` +
		`"choices":[{"index":0,"message":{"role":"assistant","content":` + jsonString(content) + `},"finish_reason":"stop"}],` +
		`"usage":{"prompt_tokens":5,"completion_tokens":3,"total_tokens":8}}`
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func errorBody(msg string) string {
	return `{"error":{"message":` + jsonString(msg) + `,"type":"invalid_request_error"}}`
}

func TestCompleteSuccess(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("Hi there!")))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	reply, err := c.Complete(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "Hi there!" {
		t.Errorf("reply = %q, want Hi there!", reply)
	}

	// Fixed request shape: persona + user text, fixed model and sampling.
	if gotReq.Model != DefaultModel {
		t.Errorf("model = %q, want %q", gotReq.Model, DefaultModel)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("roles = %s/%s, want system/user", gotReq.Messages[0].Role, gotReq.Messages[1].Role)
	}
	if gotReq.Messages[1].Content != "Hello" {
		t.Errorf("user content = %q, want Hello", gotReq.Messages[1].Content)
	}
	if gotReq.MaxTokens != maxTokens {
		t.Errorf("max tokens = %d, want %d", gotReq.MaxTokens, maxTokens)
	}
}

func TestCompleteMissingKey(t *testing.T) {
	c := NewClient("", "", nil)
	reply, err := c.Complete(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("missing key must not error, got %v", err)
	}
	if reply != MissingKeyReply {
		t.Errorf("reply = %q, want instructional reply", reply)
	}
}

func TestCompleteStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"auth", http.StatusUnauthorized, errorBody("bad key"), KindAuth},
		{"rate limit", http.StatusTooManyRequests, errorBody("slow down"), KindRateLimit},
		{"bad request", http.StatusBadRequest, errorBody("too long"), KindBadRequest},
		{"endpoint", http.StatusNotFound, errorBody("no such path"), KindEndpoint},
		{"service", http.StatusInternalServerError, errorBody("boom"), KindService},
		{"service bad gateway", http.StatusBadGateway, "upstream says no", KindService},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).Complete(context.Background(), "Hello")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := KindOf(err); got != tt.want {
				t.Errorf("kind = %q, want %q (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestCompleteBadRequestCarriesRemoteMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(errorBody("prompt too long")))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Complete(context.Background(), "Hello")
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if cerr.Kind != KindBadRequest {
		t.Errorf("kind = %q, want bad_request", cerr.Kind)
	}
	if cerr.Msg == "" || cerr.Msg == "invalid request: " {
		t.Errorf("remote message not carried: %q", cerr.Msg)
	}
}

func TestCompleteNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing is listening anymore

	_, err := testClient(url).Complete(context.Background(), "Hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := KindOf(err); got != KindNetwork {
		t.Errorf("kind = %q, want network (err: %v)", got, err)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[],"usage":{}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Complete(context.Background(), "Hello")
	if got := KindOf(err); got != KindResponseFormat {
		t.Errorf("kind = %q, want response_format (err: %v)", got, err)
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("")))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Complete(context.Background(), "Hello")
	if got := KindOf(err); got != KindResponseFormat {
		t.Errorf("kind = %q, want response_format (err: %v)", got, err)
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
}
