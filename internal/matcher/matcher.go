// Package matcher extracts catalog skills from free text with exact, fuzzy and
// semantic passes.
package matcher

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/skillfit/internal/semantic"
)

// Method names the pass that produced a record.
type Method string

const (
	MethodExact    Method = "exact"
	MethodFuzzy    Method = "fuzzy"
	MethodSemantic Method = "semantic"
)

const (
	// FuzzyCutoff is the minimum ratio a token needs to count as a fuzzy match.
	FuzzyCutoff    = 90.0
	defaultTopK    = 5
	minSkillLength = 3
)

// Record is one extracted skill.
type Record struct {
	Skill      string  `json:"skill"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`
	Evidence   string  `json:"evidence_snippet"`
}

// Matcher is safe for concurrent use; its catalog and searcher are read-only.
type Matcher struct {
	catalog  []string
	searcher semantic.Searcher
	topK     int
	logger   *zap.Logger
}

// Option customizes a Matcher.
type Option func(*Matcher)

// WithSearcher enables the semantic pass.
func WithSearcher(s semantic.Searcher) Option {
	return func(m *Matcher) {
		m.searcher = s
	}
}

// WithTopK sets how many semantic hits are requested.
func WithTopK(k int) Option {
	return func(m *Matcher) {
		if k > 0 {
			m.topK = k
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// New builds a Matcher over the catalog entries, lowercased and trimmed.
func New(catalog []string, opts ...Option) *Matcher {
	seen := make(map[string]struct{}, len(catalog))
	names := make([]string, 0, len(catalog))
	for _, entry := range catalog {
		name := strings.ToLower(strings.TrimSpace(entry))
		if _, ok := seen[name]; ok || name == "" {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)

	m := &Matcher{catalog: names, topK: defaultTopK, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ValidSkill reports whether a skill passes the hygiene rule shared by all
// passes: at least three letters and nothing but letters.
func ValidSkill(skill string) bool {
	if utf8.RuneCountInString(skill) < minSkillLength {
		return false
	}
	for _, r := range skill {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Extract returns at most one record per skill, keeping the highest
// confidence seen across passes. Records are ordered by confidence, then skill.
func (m *Matcher) Extract(ctx context.Context, text string) []Record {
	lowered := strings.ToLower(text)

	var found []Record
	found = append(found, m.exact(lowered)...)
	found = append(found, m.fuzzy(lowered)...)
	found = append(found, m.semantic(ctx, text)...)

	return dedupe(found)
}

func (m *Matcher) exact(lowered string) []Record {
	padded := " " + lowered + " "
	var out []Record
	for _, skill := range m.catalog {
		if !ValidSkill(skill) {
			continue
		}
		if strings.Contains(padded, " "+skill+" ") {
			out = append(out, Record{Skill: skill, Confidence: 1, Method: MethodExact, Evidence: skill})
		}
	}
	return out
}

func (m *Matcher) fuzzy(lowered string) []Record {
	tokens := strings.Fields(lowered)
	if len(tokens) == 0 {
		return nil
	}

	var out []Record
	for _, skill := range m.catalog {
		if !ValidSkill(skill) {
			continue
		}
		best := 0.0
		for _, tok := range tokens {
			if r := Ratio(skill, tok); r > best {
				best = r
			}
		}
		if best >= FuzzyCutoff {
			out = append(out, Record{Skill: skill, Confidence: best / 100, Method: MethodFuzzy, Evidence: skill})
		}
	}
	return out
}

// semantic never propagates a failure: errors and panics from the searcher
// skip the pass.
func (m *Matcher) semantic(ctx context.Context, text string) (out []Record) {
	if m.searcher == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Debug("semantic pass skipped", zap.String("reason", fmt.Sprint(r)))
			out = nil
		}
	}()

	hits, err := m.searcher.Search(ctx, text, m.topK)
	if err != nil {
		m.logger.Debug("semantic pass skipped", zap.Error(err))
		return nil
	}

	for _, hit := range hits {
		skill := strings.ToLower(hit.Skill)
		if !ValidSkill(skill) {
			continue
		}
		out = append(out, Record{Skill: skill, Confidence: hit.Similarity, Method: MethodSemantic, Evidence: skill})
	}
	return out
}

func dedupe(records []Record) []Record {
	best := make(map[string]int, len(records))
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		i, ok := best[rec.Skill]
		if !ok {
			best[rec.Skill] = len(out)
			out = append(out, rec)
			continue
		}
		if rec.Confidence > out[i].Confidence {
			out[i] = rec
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Skill < out[j].Skill
	})
	return out
}
