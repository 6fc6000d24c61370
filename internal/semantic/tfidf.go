// Package semantic finds catalog skills that are lexically close to free text.
package semantic

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMinSimilarity is the similarity a hit must exceed to be returned.
const DefaultMinSimilarity = 0.2

//nolint:gochecknoglobals
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Hit is a catalog entry returned by a search.
type Hit struct {
	Skill      string  `json:"skill"`
	Similarity float64 `json:"similarity"`
}

// Searcher finds the catalog entries most similar to a query.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Hit, error)
}

type sparseVector map[string]float64

// Index is a TF-IDF vector space over a skill catalog built from single words
// and two-word spans. It is immutable after Build.
type Index struct {
	skills        []string
	vectors       []sparseVector
	idf           map[string]float64
	minSimilarity float64
}

// Option customizes an Index.
type Option func(*Index)

// WithMinSimilarity overrides the similarity cutoff.
func WithMinSimilarity(v float64) Option {
	return func(idx *Index) {
		idx.minSimilarity = v
	}
}

// Build indexes the catalog. An empty catalog, or one without any usable
// terms, yields an index that never returns hits.
func Build(catalog []string, opts ...Option) *Index {
	idx := &Index{
		idf:           make(map[string]float64),
		minSimilarity: DefaultMinSimilarity,
	}
	for _, opt := range opts {
		opt(idx)
	}

	counts := make([]map[string]float64, 0, len(catalog))
	df := make(map[string]int)
	for _, entry := range catalog {
		tf := termCounts(entry)
		counts = append(counts, tf)
		for term := range tf {
			df[term]++
		}
	}
	if len(df) == 0 {
		return idx
	}

	n := float64(len(catalog))
	for term, freq := range df {
		idx.idf[term] = math.Log((1+n)/(1+float64(freq))) + 1
	}

	idx.skills = append(idx.skills, catalog...)
	for _, tf := range counts {
		idx.vectors = append(idx.vectors, idx.weigh(tf))
	}
	return idx
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int { return len(idx.skills) }

// Search returns at most topK entries with similarity above the cutoff, most
// similar first. It never fails; the error is part of the Searcher contract.
func (idx *Index) Search(_ context.Context, query string, topK int) ([]Hit, error) {
	if idx == nil || topK <= 0 || len(idx.skills) == 0 {
		return nil, nil
	}

	tf := termCounts(query)
	known := make(map[string]float64, len(tf))
	for term, count := range tf {
		if _, ok := idx.idf[term]; ok {
			known[term] = count
		}
	}
	q := idx.weigh(known)
	if len(q) == 0 {
		return nil, nil
	}

	type scored struct {
		pos int
		sim float64
	}
	ranked := make([]scored, len(idx.vectors))
	for i, vec := range idx.vectors {
		ranked[i] = scored{pos: i, sim: dot(q, vec)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].sim > ranked[j].sim
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}
	hits := make([]Hit, 0, topK)
	for _, r := range ranked[:topK] {
		if r.sim <= idx.minSimilarity {
			continue
		}
		hits = append(hits, Hit{Skill: idx.skills[r.pos], Similarity: clampUnit(r.sim)})
	}
	return hits, nil
}

func (idx *Index) weigh(tf map[string]float64) sparseVector {
	vec := make(sparseVector, len(tf))
	var norm float64
	for term, count := range tf {
		w := count * idx.idf[term]
		vec[term] = w
		norm += w * w
	}
	if norm == 0 {
		return sparseVector{}
	}
	norm = math.Sqrt(norm)
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}

// termCounts counts unigrams and bigrams of the lowercased text.
func termCounts(text string) map[string]float64 {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	counts := make(map[string]float64, len(tokens)*2)
	for i, tok := range tokens {
		counts[tok]++
		if i > 0 {
			counts[tokens[i-1]+" "+tok]++
		}
	}
	return counts
}

func dot(a, b sparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, w := range a {
		sum += w * b[term]
	}
	return sum
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
