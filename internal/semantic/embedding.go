package semantic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spigell/skillfit/internal/ai"
)

const defaultBatchSize = 100

// EmbeddingSearcher ranks catalog entries by cosine similarity of remote
// embeddings. Catalog vectors are computed once at construction.
type EmbeddingSearcher struct {
	embedder      ai.Embedder
	skills        []string
	vectors       [][]float32
	minSimilarity float64
}

// EmbeddingConfig tunes an EmbeddingSearcher.
type EmbeddingConfig struct {
	BatchSize int
	// MinSimilarity is the cutoff a hit must exceed. Nil means
	// DefaultMinSimilarity; zero keeps every positive match.
	MinSimilarity *float64
}

// NewEmbeddingSearcher embeds every catalog entry with the provided embedder.
func NewEmbeddingSearcher(ctx context.Context, embedder ai.Embedder, catalog []string, cfg EmbeddingConfig) (*EmbeddingSearcher, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	minSimilarity := DefaultMinSimilarity
	if cfg.MinSimilarity != nil {
		minSimilarity = *cfg.MinSimilarity
	}

	s := &EmbeddingSearcher{embedder: embedder, minSimilarity: minSimilarity}
	for start := 0; start < len(catalog); start += cfg.BatchSize {
		end := start + cfg.BatchSize
		if end > len(catalog) {
			end = len(catalog)
		}
		batch := catalog[start:end]
		vectors, err := embedder.Embed(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embedding catalog batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding catalog batch %d-%d: expected %d vectors, got %d", start, end, len(batch), len(vectors))
		}
		s.skills = append(s.skills, batch...)
		s.vectors = append(s.vectors, vectors...)
	}
	return s, nil
}

// Search embeds the query and returns at most topK entries above the cutoff.
func (s *EmbeddingSearcher) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	if topK <= 0 || len(s.skills) == 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding query: expected 1 vector, got %d", len(vectors))
	}

	hits := make([]Hit, 0, len(s.skills))
	for i, vec := range s.vectors {
		hits = append(hits, Hit{Skill: s.skills[i], Similarity: clampUnit(cosine(vectors[0], vec))})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if topK > len(hits) {
		topK = len(hits)
	}

	out := hits[:0]
	for _, hit := range hits[:topK] {
		if hit.Similarity > s.minSimilarity {
			out = append(out, hit)
		}
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var ab, aa, bb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		ab += x * y
		aa += x * x
		bb += y * y
	}
	if aa == 0 || bb == 0 {
		return 0
	}
	return ab / (math.Sqrt(aa) * math.Sqrt(bb))
}
