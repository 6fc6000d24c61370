package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spigell/skillfit/internal/calibration"
	"github.com/spigell/skillfit/internal/explain"
	"github.com/spigell/skillfit/internal/governance"
	"github.com/spigell/skillfit/internal/panel"
	"github.com/spigell/skillfit/internal/scoring"
	"github.com/spigell/skillfit/internal/utils"
	"github.com/spigell/skillfit/internal/whatif"
)

// Stage names.
const (
	StageScore          = "score"
	StageAlignment      = "alignment"
	StageBias           = "bias"
	StageCalibration    = "calibration"
	StageConfidence     = "confidence"
	StageSensitivity    = "sensitivity"
	StageCounterfactual = "counterfactual"
	StageSimulation     = "simulation"
	StageCausal         = "causal"
	StageHeatmap        = "heatmap"
	StageOffer          = "offer"
	StagePanel          = "panel"
	StageCommittee      = "committee"
	StageRisk           = "risk"
	StageExecutive      = "executive"
	StageJustification  = "justification"
	StageExplanation    = "explanation"
)

type applyFunc func(ctx context.Context, cfg *Config, deps Deps, ev *Evaluation) (Step, error)

// funcStage is a Stage backed by a function. The config seen by Validate is
// kept for Apply.
type funcStage struct {
	name     string
	required bool
	requires []string
	validate func(cfg *Config) error
	apply    applyFunc

	cfg      *Config
	disabled bool
	reason   string
}

func (s *funcStage) Name() string { return s.name }

func (s *funcStage) Disable(reason string) {
	if s.required {
		return
	}
	s.disabled = true
	s.reason = reason
}

func (s *funcStage) IsEnabled() bool { return !s.disabled }

func (s *funcStage) Validate(cfg *Config) error {
	s.cfg = cfg
	if s.validate == nil {
		return nil
	}
	return s.validate(cfg)
}

func (s *funcStage) Apply(ctx context.Context, deps Deps, ev *Evaluation) (Step, error) {
	cfg := s.cfg
	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}
	return s.apply(ctx, cfg, deps, ev)
}

func (s *funcStage) Status() Status {
	return Status{
		Name:     s.name,
		Enabled:  s.IsEnabled(),
		Required: s.required,
		Reason:   s.reason,
		Requires: s.requires,
	}
}

// DefaultStages returns a fresh list of every stage in execution order.
func DefaultStages() []Stage {
	return []Stage{
		&funcStage{name: StageScore, required: true, apply: applyScore},
		&funcStage{name: StageAlignment, requires: []string{StageScore}, apply: applyAlignment},
		&funcStage{name: StageBias, requires: []string{StageScore}, apply: applyBias},
		&funcStage{name: StageCalibration, required: true, apply: applyCalibration},
		&funcStage{name: StageConfidence, requires: []string{StageCalibration}, apply: applyConfidence},
		&funcStage{name: StageSensitivity, requires: []string{StageScore}, apply: applySensitivity},
		&funcStage{name: StageCounterfactual, requires: []string{StageScore}, validate: validateThresholds, apply: applyCounterfactual},
		&funcStage{name: StageSimulation, requires: []string{StageScore}, validate: validateThresholds, apply: applySimulation},
		&funcStage{name: StageCausal, requires: []string{StageScore}, apply: applyCausal},
		&funcStage{name: StageHeatmap, requires: []string{StageSimulation}, apply: applyHeatmap},
		&funcStage{name: StageOffer, requires: []string{StageCalibration, StageSensitivity}, apply: applyOffer},
		&funcStage{name: StagePanel, requires: []string{StageOffer}, validate: validatePanel, apply: applyPanel},
		&funcStage{name: StageCommittee, requires: []string{StageOffer}, apply: applyCommittee},
		&funcStage{name: StageRisk, requires: []string{StageConfidence, StageSensitivity, StageCounterfactual}, apply: applyRisk},
		&funcStage{name: StageExecutive, requires: []string{StageOffer}, apply: applyExecutive},
		&funcStage{name: StageJustification, requires: []string{StageCommittee}, apply: applyJustification},
		&funcStage{name: StageExplanation, required: true, apply: applyExplanation},
	}
}

func validateThresholds(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	for name, v := range map[string]float64{"hire": cfg.Thresholds.Hire, "target": cfg.Thresholds.Target} {
		if v <= 0 || v > 100 {
			return fmt.Errorf("%s threshold must be in (0, 100], got %v", name, v)
		}
	}
	return nil
}

func validatePanel(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	return panel.ValidatePersonas(cfg.Personas)
}

func applyScore(_ context.Context, _ *Config, _ Deps, ev *Evaluation) (Step, error) {
	ev.Report = scoring.Score(ev.Resume, ev.Role.Skills)
	ev.Report.Role = ev.Role.Name
	ev.record(ev.Report)
	return Step{Score: ev.Report.Score, Detail: fmt.Sprintf("%d of %d matched", len(ev.Report.Matched), ev.Role.Skills.Len())}, nil
}

func applyAlignment(_ context.Context, _ *Config, _ Deps, ev *Evaluation) (Step, error) {
	if ev.JD == nil {
		return Step{Detail: "no job description"}, nil
	}
	a := scoring.Align(ev.Resume, ev.JD.Mandatory, ev.JD.Optional)
	ev.Alignment = &a
	ev.record(a)
	return Step{Score: a.Score, Detail: a.Decision}, nil
}

func applyBias(_ context.Context, _ *Config, deps Deps, ev *Evaluation) (Step, error) {
	if deps.Adjuster == nil {
		return Step{}, fmt.Errorf("bias adjuster is required")
	}
	ev.Bias = deps.Adjuster.Adjust(ev.Resume, ev.Role.Skills, ev.Report.Score)
	ev.record(ev.Bias)
	return Step{Score: ev.Bias.AdjustedScore, Detail: fmt.Sprintf("+%s", strconv.FormatFloat(ev.Bias.Adjustment, 'f', -1, 64))}, nil
}

func applyCalibration(_ context.Context, _ *Config, _ Deps, ev *Evaluation) (Step, error) {
	ev.Calibration = calibration.Calibrate(ev.AdjustedScore())
	ev.record(ev.Calibration)
	return Step{Score: ev.Calibration.CalibratedScore, Detail: string(ev.Calibration.Band)}, nil
}

func applyConfidence(_ context.Context, _ *Config, _ Deps, ev *Evaluation) (Step, error) {
	c := calibration.EstimateConfidence(ev.Report.Score, ev.AdjustedScore(), ev.Report.Coverage, ev.Calibration.Band)
	ev.Confidence = &c
	ev.record(c)
	return Step{Score: c.Confidence, Detail: string(c.Uncertainty)}, nil
}

func applySensitivity(_ context.Context, cfg *Config, deps Deps, ev *Evaluation) (Step, error) {
	r := analyzer(deps).Sensitivity(ev.Resume, ev.Role.Skills, ev.Report.Score, cfg.Thresholds.Hire)
	ev.Sensitivity = &r
	ev.record(r)
	return Step{Score: ev.Report.Score, Detail: string(r.Stability)}, nil
}

func applyCounterfactual(_ context.Context, cfg *Config, deps Deps, ev *Evaluation) (Step, error) {
	r := analyzer(deps).Counterfactual(ev.Resume, ev.Role.Skills, ev.Report.Score, cfg.Thresholds.Target)
	ev.Counterfactual = &r
	ev.record(r)
	return Step{Score: ev.Report.Score, Detail: string(r.Status)}, nil
}

func applySimulation(_ context.Context, cfg *Config, deps Deps, ev *Evaluation) (Step, error) {
	r := analyzer(deps).Simulate(ev.Resume, ev.Role.Skills, ev.Report.Score, cfg.Thresholds.Hire)
	ev.Simulation = &r
	ev.record(r)
	return Step{Score: ev.Report.Score, Detail: fmt.Sprintf("%d recommendations", len(r.TopRecommendations))}, nil
}

func applyCausal(_ context.Context, _ *Config, deps Deps, ev *Evaluation) (Step, error) {
	r := analyzer(deps).CausalImpact(ev.Resume, ev.Role.Skills, ev.Report.Score)
	ev.Causal = &r
	ev.record(r)
	return Step{Score: ev.Report.Score, Detail: fmt.Sprintf("%d drivers", len(r.TopDrivers))}, nil
}

func applyHeatmap(_ context.Context, cfg *Config, _ Deps, ev *Evaluation) (Step, error) {
	if ev.Simulation == nil {
		return Step{}, fmt.Errorf("simulation results are required")
	}
	h := whatif.BuildHeatmap(*ev.Simulation, cfg.Thresholds.Hire)
	ev.Heatmap = &h
	ev.record(h)
	return Step{Detail: fmt.Sprintf("%d cells", len(h.Cells))}, nil
}

func applyOffer(_ context.Context, cfg *Config, _ Deps, ev *Evaluation) (Step, error) {
	if ev.Sensitivity == nil {
		return Step{}, fmt.Errorf("sensitivity results are required")
	}
	o := calibration.EstimateOffer(ev.AdjustedScore(), cfg.Thresholds.Hire, ev.Sensitivity.Stability, ev.Calibration.HumanReview)
	ev.Offer = &o
	ev.HiringRisk = panel.HiringRisk(o.Expected)
	ev.record(o)
	return Step{Score: o.Expected, Detail: string(o.Band)}, nil
}

func applyPanel(_ context.Context, cfg *Config, _ Deps, ev *Evaluation) (Step, error) {
	members := panel.Simulate(cfg.Personas, ev.AdjustedScore(), ev.HiringRisk)
	d, err := panel.Aggregate(members)
	if err != nil {
		return Step{}, err
	}
	ev.Panel = &d
	ev.record(d)
	return Step{Score: d.Confidence, Detail: string(d.Decision)}, nil
}

func applyCommittee(_ context.Context, _ *Config, _ Deps, ev *Evaluation) (Step, error) {
	c := panel.Convene(ev.AdjustedScore(), ev.HiringRisk, utils.Round(ev.OfferPercent(), 1), ev.Report.Missing)
	ev.Committee = &c
	ev.record(c)
	return Step{Detail: fmt.Sprintf("%d members", len(c.Members))}, nil
}

func applyRisk(_ context.Context, _ *Config, _ Deps, ev *Evaluation) (Step, error) {
	if ev.Confidence == nil || ev.Sensitivity == nil || ev.Counterfactual == nil {
		return Step{}, fmt.Errorf("confidence, sensitivity and counterfactual results are required")
	}
	r := governance.AssessRisk(governance.RiskInput{
		FinalScore:              ev.AdjustedScore(),
		Uncertainty:             ev.Confidence.Uncertainty,
		UncertaintyValue:        utils.Round(1-ev.Confidence.Confidence, 3),
		Stability:               ev.Sensitivity.Stability,
		BiasFlags:               ev.Bias.Flags,
		CounterfactualAvailable: ev.Counterfactual.Status == whatif.CounterfactualAvailable,
	})
	ev.Risk = &r
	ev.record(r)
	return Step{Score: r.Confidence, Detail: fmt.Sprintf("%s/%s", r.RiskLevel, r.Decision)}, nil
}

func applyExecutive(_ context.Context, _ *Config, _ Deps, ev *Evaluation) (Step, error) {
	e := explain.ExecutiveSummary(ev.Role.Name, ev.AdjustedScore(), ev.HiringRisk, utils.Round(ev.OfferPercent(), 1), ev.Report.Missing)
	ev.Executive = &e
	ev.record(e)
	return Step{Detail: e.Recommendation}, nil
}

func applyJustification(_ context.Context, _ *Config, _ Deps, ev *Evaluation) (Step, error) {
	if ev.Committee == nil {
		return Step{}, fmt.Errorf("committee results are required")
	}
	j := explain.OfferJustification(*ev.Committee, ev.AdjustedScore(), ev.HiringRisk, utils.Round(ev.OfferPercent(), 1), ev.Report.Missing)
	ev.Justification = &j
	ev.record(j)
	return Step{Detail: j.Recommendation}, nil
}

func applyExplanation(_ context.Context, _ *Config, _ Deps, ev *Evaluation) (Step, error) {
	ev.Explanation = explain.Explain(ev.Report.Score, ev.AdjustedScore(), ev.Resume, ev.Role.Skills, ev.Bias.Flags)
	ev.record(ev.Explanation)
	return Step{Score: ev.Explanation.FinalScore, Detail: fmt.Sprintf("%d matched, %d missing", len(ev.Explanation.Matched), len(ev.Explanation.Missing))}, nil
}

func analyzer(deps Deps) *whatif.Analyzer {
	if deps.Analyzer == nil {
		return whatif.New()
	}
	return deps.Analyzer
}
