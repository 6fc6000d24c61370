package pipeline

import (
	"github.com/spigell/skillfit/internal/bias"
	"github.com/spigell/skillfit/internal/calibration"
	"github.com/spigell/skillfit/internal/explain"
	"github.com/spigell/skillfit/internal/governance"
	"github.com/spigell/skillfit/internal/matcher"
	"github.com/spigell/skillfit/internal/panel"
	"github.com/spigell/skillfit/internal/scoring"
	"github.com/spigell/skillfit/internal/skills"
	"github.com/spigell/skillfit/internal/whatif"
)

// Evaluation is the working state of one role evaluation. Stages read what
// earlier stages produced and fill in their own part. Optional parts are nil
// when their stage is disabled.
type Evaluation struct {
	Role   scoring.RoleProfile
	Resume skills.Set
	JD     *matcher.JDProfile

	Report         scoring.Report
	Alignment      *scoring.Alignment
	Bias           bias.Result
	Calibration    calibration.Result
	Confidence     *calibration.Confidence
	Sensitivity    *whatif.SensitivityReport
	Counterfactual *whatif.Counterfactual
	Simulation     *whatif.SimulationReport
	Causal         *whatif.CausalReport
	Heatmap        *whatif.Heatmap
	Offer          *calibration.Offer
	HiringRisk     float64
	Panel          *panel.Decision
	Committee      *panel.Committee
	Risk           *governance.RiskProfile
	Executive      *explain.Executive
	Justification  *explain.Justification
	Explanation    explain.Explanation

	Results Results
}

func (ev *Evaluation) record(r Result) {
	ev.Results = append(ev.Results, r)
}

// AdjustedScore is the bias-adjusted score, or the base score when no
// adjustment ran.
func (ev *Evaluation) AdjustedScore() float64 {
	if ev.Bias.Flags == nil {
		return ev.Report.Score
	}
	return ev.Bias.AdjustedScore
}

// OfferPercent is the expected offer probability as a percentage.
func (ev *Evaluation) OfferPercent() float64 {
	if ev.Offer == nil {
		return 0
	}
	return ev.Offer.Expected * 100
}

// FinalDecision picks the most considered decision available: the risk
// profile, then the panel, then the calibration band.
func (ev *Evaluation) FinalDecision() string {
	switch {
	case ev.Risk != nil:
		return ev.Risk.Decision
	case ev.Panel != nil:
		return string(ev.Panel.Decision)
	default:
		return string(ev.Calibration.Band)
	}
}
