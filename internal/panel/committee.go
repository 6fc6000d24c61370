package panel

import (
	"fmt"
	"strconv"
	"strings"
)

type CommitteeMember struct {
	Persona    string `json:"persona"`
	Verdict    string `json:"verdict"`
	Reasoning  string `json:"reasoning"`
	Confidence string `json:"confidence"`
}

type Committee struct {
	Members []CommitteeMember `json:"members"`
}

func (Committee) Stage() string { return "committee" }

// Convene asks the fixed stakeholders of a hiring committee for a verdict.
// risk and offer are percentages.
func Convene(score, risk, offer float64, gaps []string) Committee {
	manager := CommitteeMember{
		Persona:    "Hiring Manager",
		Verdict:    "Hold",
		Reasoning:  fmt.Sprintf("Candidate meets core skill expectations with match score %s%%.", pct(score)),
		Confidence: "Medium",
	}
	if score >= 70 {
		manager.Verdict = "Hire"
	}
	if score >= 80 {
		manager.Confidence = "High"
	}

	top := gaps
	if len(top) > 2 {
		top = top[:2]
	}
	gapText := strings.Join(top, ", ")
	if gapText == "" {
		gapText = "none"
	}
	lead := CommitteeMember{
		Persona:    "Tech Lead",
		Verdict:    "Conditional Hire",
		Reasoning:  fmt.Sprintf("Technical fundamentals are solid; gaps identified in %s.", gapText),
		Confidence: "Medium",
	}
	if len(gaps) == 0 {
		lead.Verdict = "Hire"
	}

	hr := CommitteeMember{
		Persona:    "HR",
		Verdict:    "Caution",
		Reasoning:  fmt.Sprintf("Hiring risk assessed at %s%%.", pct(risk)),
		Confidence: "Medium",
	}
	if risk < 60 {
		hr.Verdict = "Proceed"
	}

	finance := CommitteeMember{
		Persona:    "Finance",
		Verdict:    "Review",
		Reasoning:  fmt.Sprintf("Projected offer probability of %s%% supports cost justification.", pct(offer)),
		Confidence: "Medium",
	}
	if offer >= 60 {
		finance.Verdict = "Approve"
	}

	return Committee{Members: []CommitteeMember{manager, lead, hr, finance}}
}

func pct(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
