// Package scoring measures how well a skill set covers role requirements.
package scoring

import (
	"github.com/spigell/skillfit/internal/skills"
	"github.com/spigell/skillfit/internal/utils"
)

// Report is the coverage of a role's required skills by a resume.
type Report struct {
	Role     string   `json:"role,omitempty"`
	Matched  []string `json:"matched_skills"`
	Missing  []string `json:"missing_skills"`
	Coverage float64  `json:"coverage"`
	Score    float64  `json:"score"`
}

func (Report) Stage() string { return "score" }

// ScoreFunc recomputes a score for a resume/role pair.
type ScoreFunc func(resume, role skills.Set) float64

// Score compares a resume skill set with a role skill set. An empty role set
// scores zero.
func Score(resume, role skills.Set) Report {
	matched := resume.Intersect(role)
	missing := role.Difference(resume)

	denom := role.Len()
	if denom < 1 {
		denom = 1
	}
	coverage := float64(matched.Len()) / float64(denom)

	return Report{
		Matched:  matched.Sorted(),
		Missing:  missing.Sorted(),
		Coverage: utils.Round(coverage, 3),
		Score:    utils.Clamp(utils.Round(coverage*100, 2), 0, 100),
	}
}

// CoverageScore is the ScoreFunc form of Score.
func CoverageScore(resume, role skills.Set) float64 {
	return Score(resume, role).Score
}
