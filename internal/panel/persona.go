// Package panel simulates recruiters with different risk tolerances and
// aggregates their votes into one decision.
package panel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/skillfit/internal/utils"
)

type Vote string

const (
	Proceed Vote = "PROCEED"
	Hold    Vote = "HOLD"
	Reject  Vote = "REJECT"
)

var (
	ErrEmptyPanel     = errors.New("panel has no members")
	ErrInvalidPersona = errors.New("invalid persona")
)

// Persona is a recruiter profile. RiskPenalty scales how much hiring risk
// is subtracted from the score before Threshold is applied.
type Persona struct {
	Name        string  `mapstructure:"name" json:"name"`
	RiskPenalty float64 `mapstructure:"risk-penalty" json:"risk_penalty"`
	Threshold   float64 `mapstructure:"threshold" json:"decision_threshold"`
}

func DefaultPersonas() []Persona {
	return []Persona{
		{Name: "Conservative Recruiter", RiskPenalty: 0.6, Threshold: 75},
		{Name: "Balanced Recruiter", RiskPenalty: 0.4, Threshold: 70},
		{Name: "Aggressive Recruiter", RiskPenalty: 0.2, Threshold: 65},
	}
}

// ValidatePersonas checks a configured panel before it is used.
func ValidatePersonas(personas []Persona) error {
	if len(personas) == 0 {
		return ErrEmptyPanel
	}

	seen := make(map[string]struct{}, len(personas))
	for i, p := range personas {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("%w: persona %d has no name", ErrInvalidPersona, i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: duplicate persona %q", ErrInvalidPersona, name)
		}
		if p.RiskPenalty < 0 {
			return fmt.Errorf("%w: persona %q has a negative risk penalty", ErrInvalidPersona, name)
		}
		seen[name] = struct{}{}
	}

	return nil
}

type PersonaDecision struct {
	Persona          string  `json:"persona"`
	AdjustedScore    float64 `json:"adjusted_score"`
	OfferProbability float64 `json:"offer_probability"`
	Decision         Vote    `json:"decision"`
}

// HiringRisk converts an expected offer probability into a 0-100 risk.
func HiringRisk(expectedOffer float64) float64 {
	return utils.Round((1-expectedOffer)*100, 2)
}

// Simulate lets every persona judge the same score and risk.
func Simulate(personas []Persona, score, risk float64) []PersonaDecision {
	out := make([]PersonaDecision, 0, len(personas))
	for _, p := range personas {
		adjusted := utils.Round(score-risk*p.RiskPenalty, 2)

		vote := Hold
		if adjusted >= p.Threshold {
			vote = Proceed
		}

		out = append(out, PersonaDecision{
			Persona:          p.Name,
			AdjustedScore:    adjusted,
			OfferProbability: utils.Round(utils.Clamp(adjusted/100, 0, 1), 2),
			Decision:         vote,
		})
	}
	return out
}
