// Package pipeline wires the scoring stages together and owns the
// long-lived matching state.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillfit/internal/bias"
	"github.com/spigell/skillfit/internal/logger"
	"github.com/spigell/skillfit/internal/whatif"
)

var (
	ErrUnknownStage  = errors.New("unknown stage")
	ErrRequiredStage = errors.New("stage cannot be disabled")
	ErrStageRequired = errors.New("stage is required by an enabled stage")
)

// Result is implemented by the output of every stage.
type Result interface {
	Stage() string
}

// Results is the ordered union of stage outputs. It encodes as an object
// keyed by stage name.
type Results []Result

// Find returns the latest result produced by stage.
func (r Results) Find(stage string) (Result, bool) {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i].Stage() == stage {
			return r[i], true
		}
	}
	return nil, false
}

// Names lists the stages that produced results, in order.
func (r Results) Names() []string {
	names := make([]string, 0, len(r))
	for _, res := range r {
		names = append(names, res.Stage())
	}
	return names
}

func (r Results) MarshalJSON() ([]byte, error) {
	m := make(map[string]Result, len(r))
	for _, res := range r {
		m[res.Stage()] = res
	}
	return json.Marshal(m)
}

// Stage is a single step of an evaluation.
type Stage interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, ev *Evaluation) (Step, error)
}

// Deps aggregates collaborators shared by all stages.
type Deps struct {
	Logger   *zap.Logger
	Adjuster *bias.Adjuster
	Analyzer *whatif.Analyzer
}

// Step describes the result of executing a stage.
type Step struct {
	Score  float64
	Detail string
}

// Status represents runtime information about a stage.
type Status struct {
	Name     string            `json:"name"`
	Enabled  bool              `json:"enabled"`
	Required bool              `json:"required"`
	Reason   string            `json:"reason,omitempty"`
	Requires []string          `json:"requires,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// statusProvider is implemented by stages that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks the stage with the provided name as disabled while keeping it in the list.
func DisableByName(stages []Stage, name, reason string) bool {
	found := false
	for _, stage := range stages {
		if stage.Name() == name {
			stage.Disable(reason)
			found = true
		}
	}
	return found
}

// Run validates the enabled stages and applies them in order.
func Run(ctx context.Context, cfg *Config, deps Deps, stages []Stage, ev *Evaluation) error {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, stage := range stages {
		if !stage.IsEnabled() {
			continue
		}
		if err := stage.Validate(cfg); err != nil {
			return fmt.Errorf("%s: %w", stage.Name(), err)
		}
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !stage.IsEnabled() {
			deps.Logger.Info("stage disabled", zap.String(logger.FieldStage, stage.Name()))
			continue
		}

		info, err := stage.Apply(ctx, deps, ev)
		if err != nil {
			return fmt.Errorf("%s: %w", stage.Name(), err)
		}

		deps.Logger.Info("pipeline stage",
			zap.String(logger.FieldStage, stage.Name()),
			zap.Float64("score", info.Score),
			zap.String("detail", info.Detail),
		)
	}

	return nil
}

// Describe returns status entries for the provided stages.
func Describe(stages []Stage) []Status {
	statuses := make([]Status, 0, len(stages))
	for _, stage := range stages {
		if reporter, ok := stage.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    stage.Name(),
			Enabled: stage.IsEnabled(),
		})
	}
	return statuses
}

// ValidateDisabled checks a list of stage names to disable against the
// stage graph: names must exist, must not be required, and must not be a
// dependency of a stage that stays enabled.
func ValidateDisabled(names []string) error {
	stages := DefaultStages()
	known := make(map[string]*funcStage, len(stages))
	for _, s := range stages {
		fs := s.(*funcStage)
		known[fs.name] = fs
	}

	disabled := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		fs, ok := known[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownStage, raw)
		}
		if fs.required {
			return fmt.Errorf("%w: %q", ErrRequiredStage, name)
		}
		disabled[name] = struct{}{}
	}

	var conflicts []string
	for _, s := range stages {
		fs := s.(*funcStage)
		if _, off := disabled[fs.name]; off {
			continue
		}
		for _, dep := range fs.requires {
			if _, off := disabled[dep]; off {
				conflicts = append(conflicts, fmt.Sprintf("%s (needed by %s)", dep, fs.name))
			}
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return fmt.Errorf("%w: %s", ErrStageRequired, strings.Join(conflicts, ", "))
	}

	return nil
}
