package governance

import (
	"strconv"
	"strings"

	"github.com/spigell/skillfit/internal/bias"
	"github.com/spigell/skillfit/internal/calibration"
	"github.com/spigell/skillfit/internal/utils"
	"github.com/spigell/skillfit/internal/whatif"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"

	DecisionHire   = "HIRE"
	DecisionReview = "REVIEW"

	uncertaintyNoteFloor = 0.3
	hireScore            = 70.0
)

// RiskInput gathers the diagnostics the risk profile is built from.
type RiskInput struct {
	FinalScore              float64
	Uncertainty             calibration.Uncertainty
	UncertaintyValue        float64
	Stability               whatif.Stability
	BiasFlags               map[string]bool
	CounterfactualAvailable bool
}

type RiskProfile struct {
	Decision         string           `json:"decision"`
	RiskLevel        RiskLevel        `json:"risk_level"`
	Confidence       float64          `json:"confidence"`
	Stability        whatif.Stability `json:"stability"`
	Notes            []string         `json:"governance_notes"`
	RecruiterSummary string           `json:"recruiter_summary"`
}

func (RiskProfile) Stage() string { return "risk" }

// AssessRisk only ever recommends HIRE for low risk, stable decisions; every
// other profile is routed to a human.
func AssessRisk(in RiskInput) RiskProfile {
	notes := []string{}
	for _, flag := range bias.ActiveFlags(in.BiasFlags) {
		notes = append(notes, "Bias risk detected: "+strings.ReplaceAll(flag, "_", " "))
	}
	if in.Stability == whatif.Fragile {
		notes = append(notes, "Decision is sensitive to small skill changes")
	}
	if in.UncertaintyValue >= uncertaintyNoteFloor {
		notes = append(notes, "Prediction uncertainty exceeds safe threshold")
	}
	if in.CounterfactualAvailable {
		notes = append(notes, "Decision can be flipped with feasible skill additions")
	}

	level, decision := RiskLow, DecisionReview
	switch {
	case in.Uncertainty == calibration.UncertaintyHigh || in.Stability == whatif.Fragile:
		level = RiskHigh
	case in.Uncertainty == calibration.UncertaintyMedium:
		level = RiskMedium
	case in.FinalScore >= hireScore:
		decision = DecisionHire
	}

	tail := "No significant governance risks detected."
	if len(notes) > 0 {
		tail = strings.Join(notes, " ")
	}

	var b strings.Builder
	b.WriteString("The candidate received a final score of ")
	b.WriteString(strconv.FormatFloat(in.FinalScore, 'f', -1, 64))
	b.WriteString("%. The decision is classified as ")
	b.WriteString(decision)
	b.WriteString(" with a ")
	b.WriteString(string(level))
	b.WriteString(" risk profile. The decision stability is ")
	b.WriteString(string(in.Stability))
	b.WriteString(". ")
	b.WriteString(tail)

	return RiskProfile{
		Decision:         decision,
		RiskLevel:        level,
		Confidence:       utils.Round(1-in.UncertaintyValue, 2),
		Stability:        in.Stability,
		Notes:            notes,
		RecruiterSummary: b.String(),
	}
}
