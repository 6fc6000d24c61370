// Package skills holds the canonical skill vocabulary: normalization, skill sets
// and the catalog of known skills.
package skills

import (
	"sort"
	"strings"
	"unicode"
)

// canonical maps a canonical skill to the aliases that resolve to it.
//
//nolint:gochecknoglobals
var canonical = map[string][]string{
	"machine learning":            {"ml", "machine learning", "ml algorithms", "supervised learning", "unsupervised learning"},
	"deep learning":               {"deep learning", "dl", "neural networks", "cnn", "rnn"},
	"natural language processing": {"nlp", "natural language processing", "text mining", "language models"},
	"computer vision":             {"computer vision", "cv", "image processing", "object detection"},
	"python":                      {"python", "python programming"},
	"sql":                         {"sql", "mysql", "postgresql", "sqlite"},
	"pandas":                      {"pandas"},
	"numpy":                       {"numpy"},
	"scikit-learn":                {"scikit-learn", "sklearn"},
	"tensorflow":                  {"tensorflow", "tf"},
	"pytorch":                     {"pytorch", "torch"},
	"data analysis":               {"data analysis", "data analytics"},
	"statistics":                  {"statistics", "statistical analysis"},
	"ci/cd":                       {"cicd", "ci cd", "continuous integration"},
}

//nolint:gochecknoglobals
var aliases = buildAliases()

func buildAliases() map[string]string {
	out := make(map[string]string)
	for name, list := range canonical {
		for _, alias := range list {
			out[alias] = name
		}
	}
	return out
}

// Normalize cleans a free-text skill and resolves it to its canonical form.
// Unknown skills are returned cleaned but unmapped.
func Normalize(raw string) string {
	cleaned := clean(raw)
	if name, ok := aliases[cleaned]; ok {
		return name
	}
	return cleaned
}

// NormalizeAll normalizes every entry, dropping blanks and duplicates.
// The result is sorted.
func NormalizeAll(raws []string) []string {
	seen := make(map[string]struct{}, len(raws))
	out := make([]string, 0, len(raws))
	for _, raw := range raws {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		name := Normalize(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func clean(raw string) string {
	lowered := strings.ToLower(raw)
	kept := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '+', r == '-', r == '.':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, lowered)
	return strings.Join(strings.Fields(kept), " ")
}
