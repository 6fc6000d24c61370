package bias

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillfit/internal/skills"
)

func namedSet(prefix string, n int) skills.Set {
	s := skills.NewSet()
	for i := 0; i < n; i++ {
		s[fmt.Sprintf("%s%02d", prefix, i)] = struct{}{}
	}
	return s
}

func TestAdjust(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		resume     skills.Set
		role       skills.Set
		original   float64
		adjustment float64
		adjusted   float64
		flags      []string
	}{
		{
			name:       "sparse generic resume",
			resume:     skills.NewSet("python", "sql"),
			role:       namedSet("role", 6),
			original:   33.33,
			adjustment: 6,
			adjusted:   39.33,
			flags:      []string{FlagSkillDensity, FlagVocabularyRisk},
		},
		{
			name:       "every check triggers",
			resume:     skills.NewSet("python", "sql"),
			role:       namedSet("role", 18),
			original:   10,
			adjustment: 10,
			adjusted:   20,
			flags:      []string{FlagJDInflation, FlagSkillDensity, FlagVocabularyRisk},
		},
		{
			name:       "clamped at 100",
			resume:     namedSet("cv", 8),
			role:       namedSet("role", 18),
			original:   99,
			adjustment: 4,
			adjusted:   100,
			flags:      []string{FlagJDInflation},
		},
		{
			name:       "boundaries do not trigger",
			resume:     namedSet("cv", 8).With("python"),
			role:       namedSet("role", 17),
			original:   70,
			adjustment: 0,
			adjusted:   70,
		},
		{
			name:       "density ceiling is exclusive",
			resume:     namedSet("cv", 3),
			role:       namedSet("role", 5),
			original:   65,
			adjustment: 0,
			adjusted:   65,
		},
	}

	adjuster := NewAdjuster(DefaultConfig())
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res := adjuster.Adjust(tc.resume, tc.role, tc.original)
			assert.InDelta(t, tc.adjustment, res.Adjustment, 1e-9)
			assert.InDelta(t, tc.adjusted, res.AdjustedScore, 1e-9)
			assert.Equal(t, tc.original, res.OriginalScore)
			assert.Equal(t, tc.flags, res.Active())
			assert.Len(t, res.Flags, 3)
		})
	}
}

func TestAdjustCapAndMonotonicity(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxAdjustment = 5
	adjuster := NewAdjuster(cfg)

	resume := skills.NewSet("ai")
	role := namedSet("role", 20)
	for _, original := range []float64{0, 12.5, 50, 64.99, 69.99, 100} {
		res := adjuster.Adjust(resume, role, original)
		require.GreaterOrEqual(t, res.AdjustedScore, original)
		require.LessOrEqual(t, res.Adjustment, 5.0)
		require.LessOrEqual(t, res.AdjustedScore, 100.0)
	}
}

func TestAdjustIsDeterministic(t *testing.T) {
	t.Parallel()

	adjuster := NewAdjuster(DefaultConfig())
	resume := skills.NewSet("python", "docker")
	role := namedSet("role", 19)

	first := adjuster.Adjust(resume, role, 42)
	second := adjuster.Adjust(resume, role, 42)
	assert.Equal(t, first, second)
}

func TestAdjustReasoning(t *testing.T) {
	t.Parallel()

	adjuster := NewAdjuster(DefaultConfig())

	res := adjuster.Adjust(skills.NewSet("python", "sql"), namedSet("role", 6), 33.33)
	assert.Equal(t,
		"Bias audit applied. Original score 33.33 adjusted by +6. Triggered checks: skill_density_penalty, vocabulary_bias_risk. All adjustments are bounded and require human oversight.",
		res.Reasoning)

	clean := adjuster.Adjust(namedSet("cv", 10), namedSet("role", 4), 90)
	assert.Contains(t, clean.Reasoning, "Triggered checks: None.")
	assert.Equal(t, "bias", clean.Stage())
}
