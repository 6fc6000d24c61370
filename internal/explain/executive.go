package explain

import (
	"fmt"
	"strings"

	"github.com/spigell/skillfit/internal/panel"
)

type level string

const (
	levelHigh   level = "high"
	levelMedium level = "medium"
	levelLow    level = "low"
)

// Executive is a short hiring brief for decision makers.
type Executive struct {
	Role           string   `json:"role"`
	Recommendation string   `json:"overall_recommendation"`
	Confidence     string   `json:"confidence_level"`
	RiskStatement  string   `json:"risk_statement"`
	Justification  string   `json:"justification"`
	NextSteps      []string `json:"next_steps"`
}

func (Executive) Stage() string { return "executive" }

// ExecutiveSummary builds the brief. risk and offer are percentages; only
// the first three gaps are named.
func ExecutiveSummary(role string, score, risk, offer float64, gaps []string) Executive {
	var (
		recommendation string
		confidence     level
		steps          []string
	)
	switch {
	case offer >= 75 && risk < 40:
		recommendation, confidence = "strong hire recommendation", levelHigh
		steps = []string{
			"Advance to final technical and leadership interviews",
			"Prepare compensation benchmark",
			"Initiate reference checks",
		}
	case offer >= 55:
		recommendation, confidence = "proceed with caution", levelMedium
		steps = []string{
			"Conduct targeted technical interview on missing skills",
			"Evaluate learning velocity and adaptability",
			"Reassess after interview loop",
		}
	default:
		recommendation, confidence = "do not proceed at this stage", levelLow
		steps = []string{
			"Recommend upskilling period",
			"Re-evaluate candidate in future hiring cycle",
		}
	}

	statement := "High risk identified; recommend reassessment after skill development."
	switch {
	case risk < 30:
		statement = "Low execution and onboarding risk identified."
	case risk < 60:
		statement = "Moderate risk identified; mitigations required during onboarding."
	}

	gapText := "no critical skill gaps"
	if len(gaps) > 0 {
		gapText = strings.Join(head(gaps, 3), ", ")
	}

	role = title(role)

	return Executive{
		Role:           role,
		Recommendation: titleRecommendation(recommendation),
		Confidence:     title(string(confidence)),
		RiskStatement:  statement,
		Justification: fmt.Sprintf(
			"For the role of %s, the candidate demonstrates a match score of %s%%, with an estimated offer probability of %s%%. "+
				"The primary risks relate to %s. The decision balances skill alignment with realistic delivery risk.",
			role, num(score), num(offer), gapText,
		),
		NextSteps: steps,
	}
}

// titleRecommendation title-cases every word except short joiners.
func titleRecommendation(s string) string {
	words := strings.Fields(title(s))
	for i, w := range words {
		if i == 0 {
			continue
		}
		switch lw := strings.ToLower(w); lw {
		case "at", "with", "of", "the":
			words[i] = lw
		}
	}
	return strings.Join(words, " ")
}

// Justification is the board-level offer decision derived from a hiring
// committee.
type Justification struct {
	Recommendation string   `json:"recommendation"`
	Justification  string   `json:"justification"`
	Risks          []string `json:"risks"`
	MitigationPlan []string `json:"mitigation_plan"`
	Confidence     string   `json:"confidence_level"`
}

func (Justification) Stage() string { return "justification" }

// OfferJustification counts committee approvals and lists the risks and
// mitigations. risk and offer are percentages.
func OfferJustification(committee panel.Committee, score, risk, offer float64, gaps []string) Justification {
	approvals := 0
	for _, m := range committee.Members {
		switch strings.ToLower(m.Verdict) {
		case "hire", "approve", "proceed":
			approvals++
		}
	}

	var (
		recommendation string
		confidence     level
	)
	switch {
	case approvals >= 3 && offer >= 65:
		recommendation, confidence = "APPROVE OFFER", levelHigh
	case approvals >= 2:
		recommendation, confidence = "CONDITIONAL OFFER", levelMedium
	default:
		recommendation, confidence = "DO NOT PROCEED", levelLow
	}

	risks := []string{}
	mitigation := []string{}
	if risk >= 50 {
		risks = append(risks, "Elevated hiring risk due to skill gaps or role mismatch.")
	}
	if len(gaps) > 0 {
		risks = append(risks, fmt.Sprintf("Technical gaps identified in %s.", strings.Join(gaps, ", ")))
		mitigation = append(mitigation, "Address skill gaps through onboarding plan and first-90-day objectives.")
	}
	if risk >= 50 {
		mitigation = append(mitigation, "Schedule early performance checkpoints and mentoring support.")
	}
	if len(risks) == 0 {
		risks = append(risks, "No material risks identified.")
	}
	if len(mitigation) == 0 {
		mitigation = append(mitigation, "No additional mitigation required.")
	}

	return Justification{
		Recommendation: recommendation,
		Justification: fmt.Sprintf(
			"The hiring committee evaluation indicates a match score of %s%% with an estimated offer probability of %s%%. "+
				"%d out of %d stakeholders support proceeding. Identified risks are considered manageable within current hiring policy.",
			num(score), num(offer), approvals, len(committee.Members),
		),
		Risks:          risks,
		MitigationPlan: mitigation,
		Confidence:     title(string(confidence)),
	}
}
