package whatif

import (
	"sort"

	"github.com/spigell/skillfit/internal/skills"
	"github.com/spigell/skillfit/internal/utils"
)

type Change string

const (
	CrossesThreshold Change = "CROSSES_HIRE_THRESHOLD"
	PositiveImpact   Change = "POSITIVE_IMPACT"
	NoImpact         Change = "NO_IMPACT"

	// DefaultHireThreshold is the score at which a candidate is hired.
	DefaultHireThreshold = 70.0

	maxRecommendations = 5
)

type SkillSimulation struct {
	Skill    string  `json:"skill"`
	NewScore float64 `json:"new_score"`
	Delta    float64 `json:"delta"`
	Change   Change  `json:"decision_change"`
}

type SimulationReport struct {
	BaseScore          float64           `json:"base_score"`
	Threshold          float64           `json:"threshold"`
	Simulations        []SkillSimulation `json:"simulations"`
	TopRecommendations []string          `json:"top_recommendations"`
	Explanation        string            `json:"explanation"`
}

func (SimulationReport) Stage() string { return "simulation" }

// Simulate adds each missing role skill independently and ranks the skills
// by how much they raise the score.
func (a *Analyzer) Simulate(resume, role skills.Set, base, threshold float64) SimulationReport {
	variants := a.perturb(modeAdd, resume, role, role.Difference(resume).Sorted())

	sims := make([]SkillSimulation, 0, len(variants))
	for _, v := range variants {
		delta := utils.Round(v.score-base, 2)

		change := NoImpact
		switch {
		case base < threshold && v.score >= threshold:
			change = CrossesThreshold
		case delta > 0:
			change = PositiveImpact
		}

		sims = append(sims, SkillSimulation{
			Skill:    v.skill,
			NewScore: v.score,
			Delta:    delta,
			Change:   change,
		})
	}

	sort.Slice(sims, func(i, j int) bool {
		if sims[i].Delta != sims[j].Delta {
			return sims[i].Delta > sims[j].Delta
		}
		return sims[i].Skill < sims[j].Skill
	})

	top := []string{}
	for _, s := range sims {
		if len(top) == maxRecommendations {
			break
		}
		if s.Delta > 0 {
			top = append(top, s.Skill)
		}
	}

	return SimulationReport{
		BaseScore:          base,
		Threshold:          threshold,
		Simulations:        sims,
		TopRecommendations: top,
		Explanation: "The hiring simulation evaluates the marginal impact of acquiring each missing skill. " +
			"Skills are ranked by their ability to improve the candidate's match score and cross hiring thresholds.",
	}
}
