package governance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillfit/internal/audit"
	"github.com/spigell/skillfit/internal/bias"
	"github.com/spigell/skillfit/internal/calibration"
	"github.com/spigell/skillfit/internal/whatif"
)

const decisionID = "0b7e3c5a-9a51-4c8e-8f0e-3f3c6f1f4d2a"

func TestOverrideValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Override
		want error
	}{
		{
			name: "valid",
			in:   Override{DecisionID: decisionID, Decision: "HIRE", Reason: "strong portfolio review", ReviewerID: "r-1"},
		},
		{
			name: "unknown decision",
			in:   Override{DecisionID: decisionID, Decision: "MAYBE", Reason: "strong portfolio review", ReviewerID: "r-1"},
			want: ErrInvalidDecision,
		},
		{
			name: "reason padded with whitespace",
			in:   Override{DecisionID: decisionID, Decision: "HOLD", Reason: "   too short   ", ReviewerID: "r-1"},
			want: ErrReasonTooShort,
		},
		{
			name: "missing reviewer",
			in:   Override{DecisionID: decisionID, Decision: "REJECT", Reason: "failed the take-home", ReviewerID: "  "},
			want: ErrReviewerRequired,
		},
		{
			name: "missing decision id",
			in:   Override{Decision: "REJECT", Reason: "failed the take-home", ReviewerID: "r-1"},
			want: ErrMissingDecision,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.in.Validate()
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}

	assert.EqualError(t, ErrReasonTooShort, "Override reason must be at least 10 characters.")
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := audit.NewFileStore(t.TempDir())
	require.NoError(t, err)

	trace := audit.NewTrace(audit.Decision{Role: "Data Analyst", FinalDecision: "HOLD"}, time.Now())
	require.NoError(t, store.Append(ctx, trace))

	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	rec, err := Submit(ctx, store, Override{
		DecisionID: trace.DecisionID,
		Decision:   "HIRE",
		Reason:     "  references were excellent  ",
		ReviewerID: "r-7",
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "references were excellent", rec.Reason)

	loaded, err := store.Load(ctx, trace.DecisionID)
	require.NoError(t, err)
	assert.Equal(t, "HIRE", loaded.EffectiveDecision())
	assert.Equal(t, "HOLD", loaded.FinalDecision)

	_, err = Submit(ctx, store, Override{DecisionID: trace.DecisionID, Decision: "HIRE", Reason: "short", ReviewerID: "r-7"}, now)
	require.ErrorIs(t, err, ErrReasonTooShort)

	_, err = Submit(ctx, store, Override{DecisionID: decisionID, Decision: "HIRE", Reason: "no trace for this one", ReviewerID: "r-7"}, now)
	require.ErrorIs(t, err, audit.ErrNotFound)
}

func TestAssessRisk(t *testing.T) {
	t.Parallel()

	t.Run("low risk hire", func(t *testing.T) {
		t.Parallel()

		p := AssessRisk(RiskInput{FinalScore: 82, Uncertainty: calibration.UncertaintyLow, UncertaintyValue: 0.1, Stability: whatif.Robust})
		assert.Equal(t, DecisionHire, p.Decision)
		assert.Equal(t, RiskLow, p.RiskLevel)
		assert.InDelta(t, 0.9, p.Confidence, 1e-9)
		assert.Empty(t, p.Notes)
		assert.Equal(t,
			"The candidate received a final score of 82%. The decision is classified as HIRE with a LOW risk profile. The decision stability is ROBUST. No significant governance risks detected.",
			p.RecruiterSummary)
	})

	t.Run("low risk below threshold reviews", func(t *testing.T) {
		t.Parallel()

		p := AssessRisk(RiskInput{FinalScore: 60, Uncertainty: calibration.UncertaintyLow, Stability: whatif.Moderate})
		assert.Equal(t, DecisionReview, p.Decision)
		assert.Equal(t, RiskLow, p.RiskLevel)
	})

	t.Run("medium uncertainty", func(t *testing.T) {
		t.Parallel()

		p := AssessRisk(RiskInput{FinalScore: 90, Uncertainty: calibration.UncertaintyMedium, UncertaintyValue: 0.35, Stability: whatif.Robust})
		assert.Equal(t, RiskMedium, p.RiskLevel)
		assert.Equal(t, DecisionReview, p.Decision)
		assert.Equal(t, []string{"Prediction uncertainty exceeds safe threshold"}, p.Notes)
	})

	t.Run("fragile with every note", func(t *testing.T) {
		t.Parallel()

		p := AssessRisk(RiskInput{
			FinalScore:              55,
			Uncertainty:             calibration.UncertaintyLow,
			UncertaintyValue:        0.3,
			Stability:               whatif.Fragile,
			BiasFlags:               map[string]bool{bias.FlagVocabularyRisk: true, bias.FlagJDInflation: true, bias.FlagSkillDensity: false},
			CounterfactualAvailable: true,
		})
		assert.Equal(t, RiskHigh, p.RiskLevel)
		assert.Equal(t, DecisionReview, p.Decision)
		assert.Equal(t, []string{
			"Bias risk detected: jd inflation detected",
			"Bias risk detected: vocabulary bias risk",
			"Decision is sensitive to small skill changes",
			"Prediction uncertainty exceeds safe threshold",
			"Decision can be flipped with feasible skill additions",
		}, p.Notes)
	})
}
