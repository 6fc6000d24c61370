package whatif

import (
	"math"

	"github.com/spigell/skillfit/internal/skills"
	"github.com/spigell/skillfit/internal/utils"
)

type CounterfactualStatus string

const (
	AlreadyEligible         CounterfactualStatus = "ALREADY_ELIGIBLE"
	NoSkillGap              CounterfactualStatus = "NO_SKILL_GAP"
	CounterfactualAvailable CounterfactualStatus = "COUNTERFACTUAL_AVAILABLE"

	// DefaultTarget is the score a counterfactual aims for.
	DefaultTarget = 70.0

	minPerSkillGain = 5.0
)

type Action struct {
	AddSkill          string  `json:"add_skill"`
	EstimatedNewScore float64 `json:"estimated_new_score"`
	RescoredScore     float64 `json:"rescored_score"`
}

type Counterfactual struct {
	Status       CounterfactualStatus `json:"status"`
	Message      string               `json:"message,omitempty"`
	CurrentScore float64              `json:"current_score"`
	Target       float64              `json:"target_threshold"`
	Actions      []Action             `json:"actions"`
	Explanation  string               `json:"explanation,omitempty"`
}

func (Counterfactual) Stage() string { return "counterfactual" }

// Counterfactual finds the skills that would carry current up to target,
// adding missing role skills in lexical order. The estimate spreads the gap
// evenly over the missing skills with a floor per skill.
func (a *Analyzer) Counterfactual(resume, role skills.Set, current, target float64) Counterfactual {
	out := Counterfactual{
		CurrentScore: utils.Round(current, 2),
		Target:       target,
		Actions:      []Action{},
	}

	if current >= target {
		out.Status = AlreadyEligible
		out.Message = "Candidate already meets the hiring threshold."
		return out
	}

	missing := role.Difference(resume).Sorted()
	if len(missing) == 0 {
		out.Status = NoSkillGap
		out.Message = "No skill gaps detected, score gap likely due to weighting."
		return out
	}

	gain := math.Max((target-current)/float64(len(missing)), minPerSkillGain)

	var estimates []float64
	cumulative := current
	for range missing {
		cumulative += gain
		estimates = append(estimates, utils.Round(math.Min(cumulative, maxScore), 2))
		if cumulative >= target {
			break
		}
	}

	variants := a.perturb(modeCumulative, resume, role, missing[:len(estimates)])
	for i, v := range variants {
		out.Actions = append(out.Actions, Action{
			AddSkill:          v.skill,
			EstimatedNewScore: estimates[i],
			RescoredScore:     utils.Round(v.score, 2),
		})
	}

	out.Status = CounterfactualAvailable
	out.Explanation = "Adding the above skills is estimated to move the candidate into the next decision band."
	return out
}
