// Package whatif answers "what would change the decision" questions by
// perturbing a resume's skill set and rescoring each variant.
package whatif

import (
	"golang.org/x/sync/errgroup"

	"github.com/spigell/skillfit/internal/scoring"
	"github.com/spigell/skillfit/internal/skills"
)

type mode int

const (
	// modeToggle removes each present skill or adds each absent one.
	modeToggle mode = iota
	// modeAdd adds each skill on its own.
	modeAdd
	// modeRemove removes each skill on its own.
	modeRemove
	// modeCumulative adds the skills one after another.
	modeCumulative
)

type variant struct {
	skill  string
	skills skills.Set
	score  float64
}

// Analyzer runs the what-if analyses with a shared scoring function.
type Analyzer struct {
	score       scoring.ScoreFunc
	parallelism int
}

type Option func(*Analyzer)

// WithScoreFunc replaces the coverage score used to rescore variants.
func WithScoreFunc(fn scoring.ScoreFunc) Option {
	return func(a *Analyzer) {
		if fn != nil {
			a.score = fn
		}
	}
}

// WithParallelism bounds the number of variants rescored at once.
func WithParallelism(n int) Option {
	return func(a *Analyzer) {
		a.parallelism = n
	}
}

func New(opts ...Option) *Analyzer {
	a := &Analyzer{score: scoring.CoverageScore, parallelism: 1}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// perturb builds one variant per skill in order and rescores them against
// role. The returned slice follows order regardless of parallelism.
func (a *Analyzer) perturb(m mode, resume, role skills.Set, order []string) []variant {
	variants := make([]variant, len(order))

	current := resume.Clone()
	for i, skill := range order {
		var next skills.Set
		switch m {
		case modeToggle:
			if resume.Has(skill) {
				next = resume.Without(skill)
			} else {
				next = resume.With(skill)
			}
		case modeAdd:
			next = resume.With(skill)
		case modeRemove:
			next = resume.Without(skill)
		case modeCumulative:
			current = current.With(skill)
			next = current
		}
		variants[i] = variant{skill: skill, skills: next}
	}

	if a.parallelism <= 1 || len(variants) < 2 {
		for i := range variants {
			variants[i].score = a.score(variants[i].skills, role)
		}
		return variants
	}

	var g errgroup.Group
	g.SetLimit(a.parallelism)
	for i := range variants {
		g.Go(func() error {
			variants[i].score = a.score(variants[i].skills, role)
			return nil
		})
	}
	_ = g.Wait()

	return variants
}
