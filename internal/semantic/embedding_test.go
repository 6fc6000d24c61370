package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, s.vectors[text])
	}
	return out, nil
}

func (s *stubEmbedder) Model() string { return "stub" }

func TestEmbeddingSearcher(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"python":     {1, 0, 0},
		"sql":        {0, 1, 0},
		"statistics": {0, 0, 1},
		"py scripts": {0.9, 0.1, 0},
	}}

	s, err := NewEmbeddingSearcher(context.Background(), embedder, []string{"python", "sql", "statistics"}, EmbeddingConfig{BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.calls, "catalog should be embedded in two batches")

	hits, err := s.Search(context.Background(), "py scripts", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "python", hits[0].Skill)
	assert.Greater(t, hits[0].Similarity, 0.9)
}

func TestEmbeddingSearcherZeroCutoff(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"python":     {1, 0, 0},
		"sql":        {0, 1, 0},
		"statistics": {0, 0, 1},
		"py scripts": {0.9, 0.1, 0},
	}}

	cutoff := 0.0
	s, err := NewEmbeddingSearcher(context.Background(), embedder, []string{"python", "sql", "statistics"}, EmbeddingConfig{MinSimilarity: &cutoff})
	require.NoError(t, err)

	hits, err := s.Search(context.Background(), "py scripts", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "python", hits[0].Skill)
	assert.Equal(t, "sql", hits[1].Skill)
}

func TestEmbeddingSearcherErrors(t *testing.T) {
	t.Parallel()

	_, err := NewEmbeddingSearcher(context.Background(), nil, []string{"python"}, EmbeddingConfig{})
	require.Error(t, err)

	failing := &stubEmbedder{err: errors.New("quota")}
	_, err = NewEmbeddingSearcher(context.Background(), failing, []string{"python"}, EmbeddingConfig{})
	require.Error(t, err)

	s := &EmbeddingSearcher{embedder: failing, skills: []string{"python"}, vectors: [][]float32{{1}}, minSimilarity: DefaultMinSimilarity}
	_, err = s.Search(context.Background(), "python", 5)
	require.Error(t, err)
}
