package whatif

import (
	"fmt"
	"math"
	"sort"

	"github.com/spigell/skillfit/internal/skills"
	"github.com/spigell/skillfit/internal/utils"
)

// Stability classifies how easily a decision flips.
type Stability string

const (
	Robust   Stability = "ROBUST"
	Moderate Stability = "MODERATE"
	Fragile  Stability = "FRAGILE"
)

const (
	fragileSensitivity  = 0.30
	moderateSensitivity = 0.15
	maxScore            = 100.0
)

type SkillSensitivity struct {
	Skill       string    `json:"skill"`
	Impact      float64   `json:"impact"`
	Sensitivity float64   `json:"sensitivity"`
	Critical    bool      `json:"critical"`
	Class       Stability `json:"stability_class"`
}

type SensitivityReport struct {
	BaseScore   float64            `json:"base_score"`
	Threshold   float64            `json:"threshold"`
	Stability   Stability          `json:"decision_stability"`
	Skills      []SkillSensitivity `json:"skill_sensitivities"`
	Explanation string             `json:"explanation"`
}

func (SensitivityReport) Stage() string { return "sensitivity" }

// Critical returns the skills whose flip crosses the threshold.
func (r SensitivityReport) Critical() []string {
	var out []string
	for _, s := range r.Skills {
		if s.Critical {
			out = append(out, s.Skill)
		}
	}
	return out
}

// Sensitivity flips every role skill in turn and measures how far the score
// moves and whether the decision crosses threshold.
func (a *Analyzer) Sensitivity(resume, role skills.Set, base, threshold float64) SensitivityReport {
	variants := a.perturb(modeToggle, resume, role, role.Sorted())

	records := make([]SkillSensitivity, 0, len(variants))
	critical := 0
	moderate := false
	for _, v := range variants {
		impact := utils.Round(v.score-base, 2)
		sensitivity := utils.Round(math.Abs(impact)/maxScore, 3)

		rec := SkillSensitivity{
			Skill:       v.skill,
			Impact:      impact,
			Sensitivity: sensitivity,
			Critical:    (base >= threshold) != (v.score >= threshold),
			Class:       classify(sensitivity),
		}
		if rec.Critical {
			critical++
		}
		if rec.Class == Moderate {
			moderate = true
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return math.Abs(records[i].Impact) > math.Abs(records[j].Impact)
	})

	stability := Robust
	switch {
	case critical > 0:
		stability = Fragile
	case moderate:
		stability = Moderate
	}

	verdict := "is stable under perturbations"
	if stability != Robust {
		verdict = "requires careful review"
	}

	return SensitivityReport{
		BaseScore: base,
		Threshold: threshold,
		Stability: stability,
		Skills:    records,
		Explanation: fmt.Sprintf(
			"The decision is classified as %s. %d skill(s) have the potential to flip the outcome. This indicates that the decision %s.",
			stability, critical, verdict,
		),
	}
}

func classify(sensitivity float64) Stability {
	switch {
	case sensitivity >= fragileSensitivity:
		return Fragile
	case sensitivity >= moderateSensitivity:
		return Moderate
	default:
		return Robust
	}
}
