package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/skillfit/internal/logger"
	"github.com/spigell/skillfit/internal/utils"
)

const (
	defaultModel      = "text-embedding-004"
	defaultMaxRetries = 3
	retryBaseDelay    = time.Second
	maxRetryDelay     = 30 * time.Second
	providerName      = "gemini"
)

//nolint:gochecknoglobals
var (
	wait            = utils.WaitFor
	retryAfterRegex = regexp.MustCompile(`retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)
)

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder produces text embeddings through the Gemini API.
type Embedder struct {
	models     contentEmbedder
	model      string
	maxRetries int
	logger     *zap.Logger
}

// Config configures the Gemini embedder.
type Config struct {
	Model      string
	MaxRetries int
}

// NewEmbedder creates an Embedder backed by the Gemini API.
func NewEmbedder(ctx context.Context, apiKey string, cfg Config, log *zap.Logger) (*Embedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEmbedder(client.Models, cfg, log), nil
}

func newEmbedder(models contentEmbedder, cfg Config, log *zap.Logger) *Embedder {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	return &Embedder{
		models:     models,
		model:      model,
		maxRetries: retries,
		logger:     logger.WithCommonFields(log, providerName, model),
	}
}

// Embed returns one vector per text.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e == nil || e.models == nil {
		return nil, errors.New("gemini embedder is not initialized")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		})
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		resp, err := e.models.EmbedContent(ctx, e.model, contents, nil)
		if err == nil {
			return vectors(resp, len(texts))
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == e.maxRetries {
			break
		}

		e.logger.Debug("embedding request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := wait(ctx, delay); err != nil {
			return nil, fmt.Errorf("waiting for retry: %w", err)
		}
	}

	return nil, fmt.Errorf("embed content: %w", lastErr)
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

func vectors(resp *genai.EmbedContentResponse, expected int) ([][]float32, error) {
	if resp == nil {
		return nil, errors.New("gemini api returned empty response")
	}
	if len(resp.Embeddings) != expected {
		return nil, fmt.Errorf("gemini api returned %d embeddings for %d texts", len(resp.Embeddings), expected)
	}
	out := make([][]float32, 0, expected)
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini api returned empty embedding at position %d", i)
		}
		out = append(out, emb.Values)
	}
	return out, nil
}

// retryDelay reports whether err is temporary and how long to wait before the
// next attempt. Quota errors that ask for a long pause are not retried.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	delay := time.Duration(attempt) * retryBaseDelay
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		if m := retryAfterRegex.FindStringSubmatch(strings.ToLower(apiErr.Message)); m != nil {
			seconds, perr := strconv.ParseFloat(m[1], 64)
			if perr == nil {
				delay = time.Duration(seconds * float64(time.Second))
			}
		}
		if delay > maxRetryDelay {
			return 0, false
		}
		return delay, true
	case apiErr.Code >= http.StatusInternalServerError:
		return delay, true
	default:
		return 0, false
	}
}
