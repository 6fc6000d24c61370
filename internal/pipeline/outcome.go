package pipeline

import (
	"github.com/spigell/skillfit/internal/explain"
	"github.com/spigell/skillfit/internal/scoring"
)

const (
	ReasonEmptyResume = "Empty or invalid resume text"
	ReasonNoRoles     = "No role skills provided"
)

// Outcome is the answer to one Evaluate call. A degenerate outcome carries a
// zero score and the reason no evaluation took place.
type Outcome struct {
	DecisionID    string           `json:"decision_id,omitempty"`
	Role          string           `json:"role,omitempty"`
	Score         float64          `json:"score"`
	AdjustedScore float64          `json:"adjusted_score"`
	Matched       []string         `json:"matched_skills"`
	Missing       []string         `json:"missing_skills"`
	Narrative     string           `json:"narrative,omitempty"`
	Summary       string           `json:"summary"`
	Comparison    []scoring.Report `json:"comparison,omitempty"`
	UnknownRoles  []string         `json:"unknown_roles,omitempty"`
	Degenerate    bool             `json:"degenerate"`
	Reason        string           `json:"reason,omitempty"`
	Decision      string           `json:"decision,omitempty"`
	Persisted     bool             `json:"persisted"`
	Results       Results          `json:"results,omitempty"`
}

func degenerate(reason string, unknown []string) *Outcome {
	return &Outcome{
		Matched:      []string{},
		Missing:      []string{},
		Summary:      explain.DegenerateSummary(reason),
		UnknownRoles: unknown,
		Degenerate:   true,
		Reason:       reason,
	}
}
