package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/skillfit/internal/logger"
	"github.com/spigell/skillfit/internal/panel"
	"github.com/spigell/skillfit/internal/scoring"
	"github.com/spigell/skillfit/internal/skills"
)

type namedResult string

func (r namedResult) Stage() string { return string(r) }

type stubStage struct {
	name     string
	disabled bool
	err      error
	applied  *[]string
}

func (s *stubStage) Name() string { return s.name }
func (s *stubStage) Disable(string) { s.disabled = true }
func (s *stubStage) IsEnabled() bool { return !s.disabled }
func (s *stubStage) Validate(*Config) error { return nil }
func (s *stubStage) Apply(_ context.Context, _ Deps, ev *Evaluation) (Step, error) {
	if s.err != nil {
		return Step{}, s.err
	}
	*s.applied = append(*s.applied, s.name)
	ev.record(namedResult(s.name))
	return Step{Score: 1, Detail: s.name}, nil
}

func TestRunAppliesEnabledStagesInOrder(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	var applied []string
	stages := []Stage{
		&stubStage{name: "first", applied: &applied},
		&stubStage{name: "second", applied: &applied},
		&stubStage{name: "third", applied: &applied},
	}
	require.True(t, DisableByName(stages, "second", "testing"))
	assert.False(t, DisableByName(stages, "missing", "testing"))

	ev := &Evaluation{}
	cfg := DefaultConfig()
	require.NoError(t, Run(context.Background(), &cfg, Deps{Logger: zap.New(core)}, stages, ev))

	assert.Equal(t, []string{"first", "third"}, applied)
	assert.Equal(t, []string{"first", "third"}, ev.Results.Names())
	assert.Equal(t, 1, observed.FilterMessage("stage disabled").Len())

	entries := observed.FilterMessage("pipeline stage").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[1].ContextMap()[logger.FieldStage])
	assert.Equal(t, "third", entries[1].ContextMap()["detail"])
}

func TestRunWrapsStageErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var applied []string
	stages := []Stage{
		&stubStage{name: "first", applied: &applied},
		&stubStage{name: "broken", err: boom, applied: &applied},
		&stubStage{name: "never", applied: &applied},
	}

	cfg := DefaultConfig()
	err := Run(context.Background(), &cfg, Deps{}, stages, &Evaluation{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, []string{"first"}, applied)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var applied []string
	cfg := DefaultConfig()
	err := Run(ctx, &cfg, Deps{}, []Stage{&stubStage{name: "first", applied: &applied}}, &Evaluation{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, applied)
}

func TestRequiredStagesIgnoreDisable(t *testing.T) {
	t.Parallel()

	stages := DefaultStages()
	require.True(t, DisableByName(stages, StageScore, "testing"))
	require.True(t, DisableByName(stages, StageHeatmap, "testing"))

	statuses := Describe(stages)
	byName := make(map[string]Status, len(statuses))
	for _, s := range statuses {
		byName[s.Name] = s
	}

	assert.True(t, byName[StageScore].Enabled)
	assert.True(t, byName[StageScore].Required)
	assert.False(t, byName[StageHeatmap].Enabled)
	assert.Equal(t, "testing", byName[StageHeatmap].Reason)
	assert.Equal(t, []string{StageSimulation}, byName[StageHeatmap].Requires)
}

func TestValidateDisabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []string
		err   error
	}{
		{name: "none", input: nil},
		{name: "blank entries", input: []string{"", "  "}},
		{name: "leaf stage", input: []string{"heatmap", " Causal "}},
		{name: "stage with its dependents", input: []string{"simulation", "heatmap"}},
		{name: "unknown", input: []string{"bogus"}, err: ErrUnknownStage},
		{name: "required", input: []string{"score"}, err: ErrRequiredStage},
		{name: "dependency of enabled stage", input: []string{"simulation"}, err: ErrStageRequired},
		{name: "offer without its dependents", input: []string{"offer", "panel"}, err: ErrStageRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateDisabled(tt.input)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Personas = nil
	assert.ErrorIs(t, cfg.Validate(), panel.ErrEmptyPanel)

	cfg = DefaultConfig()
	cfg.Thresholds.Hire = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Parallelism = -1
	assert.Error(t, cfg.Validate())
}

func TestCompare(t *testing.T) {
	t.Parallel()

	resume := skills.NewSet("python", "sql")
	roles := []scoring.RoleProfile{
		{Name: "Analyst", Skills: skills.NewSet("sql", "excel")},
		{Name: "Engineer", Skills: skills.NewSet("python", "sql")},
		{Name: "Reporter", Skills: skills.NewSet("sql", "tableau")},
		{Name: "Empty", Skills: skills.NewSet()},
	}

	for _, parallelism := range []int{1, 4} {
		reports := Compare(resume, roles, parallelism)
		require.Len(t, reports, 4)

		names := make([]string, 0, len(reports))
		for _, r := range reports {
			names = append(names, r.Role)
		}
		assert.Equal(t, []string{"Engineer", "Analyst", "Reporter", "Empty"}, names)
		assert.InDelta(t, 100, reports[0].Score, 1e-9)
		assert.InDelta(t, 50, reports[1].Score, 1e-9)
		assert.Zero(t, reports[3].Score)
	}
}

func TestResultsMarshalJSON(t *testing.T) {
	t.Parallel()

	results := Results{scoring.Report{Score: 50}, namedResult("extra")}
	data, err := json.Marshal(results)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "score")
	assert.Contains(t, decoded, "extra")

	found, ok := results.Find("score")
	require.True(t, ok)
	assert.InDelta(t, 50, found.(scoring.Report).Score, 1e-9)

	_, ok = results.Find("missing")
	assert.False(t, ok)
}
