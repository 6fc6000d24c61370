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

type fakeModels struct {
	mu        sync.Mutex
	calls     int
	responses []fakeResponse
	texts     [][]string
}

type fakeResponse struct {
	resp *genai.EmbedContentResponse
	err  error
}

func (f *fakeModels) EmbedContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	texts := make([]string, 0, len(contents))
	for _, c := range contents {
		texts = append(texts, c.Parts[0].Text)
	}
	f.texts = append(f.texts, texts)

	if len(f.responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.responses[0]
	f.responses = f.responses[1:]
	return res.resp, res.err
}

func embeddings(values ...[]float32) *genai.EmbedContentResponse {
	resp := &genai.EmbedContentResponse{}
	for _, v := range values {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: v})
	}
	return resp
}

func stubWait(t *testing.T) {
	t.Helper()
	original := wait
	wait = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { wait = original })
}

func TestEmbedderReturnsVectors(t *testing.T) {
	models := &fakeModels{responses: []fakeResponse{{resp: embeddings([]float32{1, 0}, []float32{0, 1})}}}
	e := newEmbedder(models, Config{Model: "embed-test"}, zap.NewNop())

	got, err := e.Embed(context.Background(), []string{"python", "sql"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 || got[1][1] != 1 {
		t.Fatalf("unexpected vectors: %+v", got)
	}
	if models.texts[0][0] != "python" || models.texts[0][1] != "sql" {
		t.Fatalf("unexpected request texts: %+v", models.texts)
	}
	if e.Model() != "embed-test" {
		t.Fatalf("expected model embed-test, got %q", e.Model())
	}
}

func TestEmbedderRetriesOnTemporaryError(t *testing.T) {
	stubWait(t)

	models := &fakeModels{responses: []fakeResponse{
		{err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}},
		{resp: embeddings([]float32{0.5})},
	}}
	e := newEmbedder(models, Config{MaxRetries: 2}, zap.NewNop())

	got, err := e.Embed(context.Background(), []string{"python"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one vector, got %d", len(got))
	}
	if models.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", models.calls)
	}
}

func TestEmbedderStopsAfterRetriesExhausted(t *testing.T) {
	stubWait(t)

	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	models := &fakeModels{responses: []fakeResponse{{err: tempErr}, {err: tempErr}}}
	e := newEmbedder(models, Config{MaxRetries: 2}, zap.NewNop())

	if _, err := e.Embed(context.Background(), []string{"python"}); err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if models.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", models.calls)
	}
}

func TestEmbedderDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	models := &fakeModels{responses: []fakeResponse{{err: genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	}}}}
	e := newEmbedder(models, Config{MaxRetries: 3}, zap.NewNop())

	if _, err := e.Embed(context.Background(), []string{"python"}); err == nil {
		t.Fatal("expected error when quota delay too long")
	}
	if models.calls != 1 {
		t.Fatalf("expected single call, got %d", models.calls)
	}
}

func TestEmbedderRejectsMismatchedResponse(t *testing.T) {
	models := &fakeModels{responses: []fakeResponse{{resp: embeddings([]float32{1})}}}
	e := newEmbedder(models, Config{}, zap.NewNop())

	if _, err := e.Embed(context.Background(), []string{"python", "sql"}); err == nil {
		t.Fatal("expected error for mismatched embedding count")
	}
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		retry  bool
		expect time.Duration
	}{
		{name: "plain error", err: errors.New("boom"), retry: false},
		{name: "bad request", err: genai.APIError{Code: http.StatusBadRequest}, retry: false},
		{name: "server error", err: genai.APIError{Code: http.StatusBadGateway}, retry: true, expect: 2 * time.Second},
		{name: "short quota", err: genai.APIError{Code: http.StatusTooManyRequests, Message: "Retry in 5s"}, retry: true, expect: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			delay, retry := retryDelay(tt.err, 2)
			if retry != tt.retry {
				t.Fatalf("expected retry %v, got %v", tt.retry, retry)
			}
			if retry && delay != tt.expect {
				t.Fatalf("expected delay %s, got %s", tt.expect, delay)
			}
		})
	}
}
