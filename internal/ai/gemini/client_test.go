package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type scriptedReply struct {
	resp *genai.GenerateContentResponse
	err  error
}

type sentMessage struct {
	model  string
	system string
	text   string
}

// scriptedChats hands out one scripted reply per created chat and records
// what the generator sent.
type scriptedChats struct {
	mu      sync.Mutex
	replies []scriptedReply
	sent    []sentMessage
}

type scriptedChat struct {
	owner  *scriptedChats
	model  string
	system string
	reply  scriptedReply
}

func (c *scriptedChat) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()
	for _, part := range parts {
		c.owner.sent = append(c.owner.sent, sentMessage{model: c.model, system: c.system, text: part.Text})
	}
	return c.reply.resp, c.reply.err
}

func (s *scriptedChats) Create(_ context.Context, model string, config *genai.GenerateContentConfig, _ []*genai.Content) (chatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.replies) == 0 {
		return nil, errors.New("unexpected call")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]

	system := ""
	if config != nil && config.SystemInstruction != nil && len(config.SystemInstruction.Parts) > 0 {
		system = config.SystemInstruction.Parts[0].Text
	}
	return &scriptedChat{owner: s, model: model, system: system, reply: reply}, nil
}

func reply(text string) scriptedReply {
	return scriptedReply{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}}
}

func failure(code int, status, message string, details ...map[string]any) scriptedReply {
	return scriptedReply{err: genai.APIError{Code: code, Status: status, Message: message, Details: details}}
}

func recordSleeps(t *testing.T) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	prev := sleep
	sleep = func(d time.Duration) { waits = append(waits, d) }
	t.Cleanup(func() { sleep = prev })
	return &waits
}

// Retry cases swap the package sleep and therefore do not run in parallel.
func TestGeneratorRetries(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		replies    []scriptedReply
		wantOutput string
		wantErr    bool
		wantCalls  int
		wantWaits  []time.Duration
	}{
		{
			name:       "server error then success",
			maxRetries: 2,
			replies:    []scriptedReply{failure(http.StatusInternalServerError, "INTERNAL", ""), reply(`{"score": 80}`)},
			wantOutput: `{"score": 80}`,
			wantCalls:  2,
			wantWaits:  []time.Duration{baseBackoff},
		},
		{
			name:       "backoff doubles",
			maxRetries: 3,
			replies: []scriptedReply{
				failure(http.StatusBadGateway, "UNAVAILABLE", ""),
				failure(http.StatusBadGateway, "UNAVAILABLE", ""),
				reply("ok"),
			},
			wantOutput: "ok",
			wantCalls:  3,
			wantWaits:  []time.Duration{baseBackoff, 2 * baseBackoff},
		},
		{
			name:       "retries exhausted",
			maxRetries: 2,
			replies: []scriptedReply{
				failure(http.StatusServiceUnavailable, "UNAVAILABLE", ""),
				failure(http.StatusServiceUnavailable, "UNAVAILABLE", ""),
			},
			wantErr:   true,
			wantCalls: 2,
			wantWaits: []time.Duration{baseBackoff},
		},
		{
			name:       "long quota wait is not retried",
			maxRetries: 3,
			replies:    []scriptedReply{failure(http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", "quota exhausted, retry after 60 seconds")},
			wantErr:    true,
			wantCalls:  1,
		},
		{
			name:       "short quota wait from details",
			maxRetries: 3,
			replies: []scriptedReply{
				failure(http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", "", map[string]any{"retryDelay": "5s"}),
				reply("ok"),
			},
			wantOutput: "ok",
			wantCalls:  2,
			wantWaits:  []time.Duration{5 * time.Second},
		},
		{
			name:       "client error",
			maxRetries: 3,
			replies:    []scriptedReply{failure(http.StatusBadRequest, "INVALID_ARGUMENT", "")},
			wantErr:    true,
			wantCalls:  1,
		},
		{
			name:       "blank response is not retried",
			maxRetries: 3,
			replies:    []scriptedReply{reply("   ")},
			wantErr:    true,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			waits := recordSleeps(t)
			chats := &scriptedChats{replies: tt.replies}
			g := &Generator{chats: chats, model: "gemini-pro", maxRetries: tt.maxRetries, logger: zap.NewNop()}

			output, err := g.GenerateContent(context.Background(), "rate the candidate", "candidate summary")
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if output != tt.wantOutput {
				t.Fatalf("expected output %q, got %q", tt.wantOutput, output)
			}
			if len(chats.sent) != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, len(chats.sent))
			}
			if len(*waits) != len(tt.wantWaits) {
				t.Fatalf("expected waits %v, got %v", tt.wantWaits, *waits)
			}
			for i, w := range tt.wantWaits {
				if (*waits)[i] != w {
					t.Fatalf("expected waits %v, got %v", tt.wantWaits, *waits)
				}
			}
			for _, msg := range chats.sent {
				if msg.model != "gemini-pro" || msg.system != "rate the candidate" || msg.text != "candidate summary" {
					t.Fatalf("unexpected message sent: %+v", msg)
				}
			}
		})
	}
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		attempt   int
		wantDelay time.Duration
		wantRetry bool
	}{
		{name: "plain error", err: errors.New("boom"), attempt: 1},
		{name: "third server error", err: genai.APIError{Code: http.StatusInternalServerError}, attempt: 3, wantDelay: 4 * baseBackoff, wantRetry: true},
		{name: "quota without hint", err: genai.APIError{Code: http.StatusTooManyRequests}, attempt: 2, wantDelay: 2 * baseBackoff, wantRetry: true},
		{name: "quota hint in message", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "Please retry in 1.5s"}, attempt: 1, wantDelay: 1500 * time.Millisecond, wantRetry: true},
		{name: "quota hint too long", err: genai.APIError{Code: http.StatusTooManyRequests, Details: []map[string]any{{"retryDelay": "45s"}}}, attempt: 1},
		{name: "wrapped not found", err: errors.Join(errors.New("generate content"), genai.APIError{Code: http.StatusNotFound}), attempt: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			delay, retry := retryDelay(tt.err, tt.attempt)
			if retry != tt.wantRetry || delay != tt.wantDelay {
				t.Fatalf("expected (%s, %v), got (%s, %v)", tt.wantDelay, tt.wantRetry, delay, retry)
			}
		})
	}
}

func TestGeneratorGuards(t *testing.T) {
	t.Parallel()

	g := &Generator{chats: &scriptedChats{}, model: "gemini-pro", maxRetries: 1, logger: zap.NewNop()}
	if _, err := g.GenerateContent(context.Background(), "sys", "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}

	var nilGen *Generator
	if _, err := nilGen.GenerateContent(context.Background(), "sys", "msg"); err == nil {
		t.Fatal("expected error for nil generator")
	}
	if nilGen.Model() != "" {
		t.Fatal("expected empty model for nil generator")
	}

	g.SetMaxRetries(0)
	if g.maxRetries != 1 {
		t.Fatalf("non-positive retries must be ignored, got %d", g.maxRetries)
	}
	g.SetMaxRetries(5)
	if g.maxRetries != 5 {
		t.Fatalf("expected 5 retries, got %d", g.maxRetries)
	}

	if _, err := NewGenerator(context.Background(), "  ", "", nil); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
