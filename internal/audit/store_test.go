package audit

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrace(t *testing.T) Trace {
	t.Helper()

	return NewTrace(Decision{
		ResumeText:    "Python, SQL, pandas, numpy",
		JDText:        "Data Scientist",
		Role:          "Data Scientist",
		BaseScore:     66.67,
		AdjustedScore: 72.67,
		RiskBand:      "HIRE",
		Matched:       []string{"numpy", "pandas", "python", "sql"},
		Missing:       []string{"machine learning", "statistics"},
		BiasFlags:     map[string]bool{"skill_density_penalty": true},
		FinalDecision: "PROCEED",
		Explanation:   "The final match score is 72.67%.",
	}, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
}

// exerciseStore runs the behaviour every backend shares.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	trace := sampleTrace(t)
	require.NoError(t, store.Append(ctx, trace))
	require.ErrorIs(t, store.Append(ctx, trace), ErrExists)

	got, err := store.Load(ctx, trace.DecisionID)
	require.NoError(t, err)
	assert.Equal(t, trace.DecisionID, got.DecisionID)
	assert.Equal(t, trace.ResumeHash, got.ResumeHash)
	assert.Equal(t, trace.Matched, got.Matched)
	assert.Equal(t, trace.BiasFlags, got.BiasFlags)
	assert.True(t, trace.Timestamp.Equal(got.Timestamp))
	assert.Empty(t, got.Overrides)
	assert.Equal(t, "PROCEED", got.EffectiveDecision())

	first := Override{DecisionID: trace.DecisionID, Decision: "HOLD", Reason: "needs a second interview", ReviewerID: "r-1", Timestamp: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)}
	second := Override{DecisionID: trace.DecisionID, Decision: "HIRE", Reason: "second interview went well", ReviewerID: "r-2", Timestamp: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, store.AppendOverride(ctx, first))
	require.NoError(t, store.AppendOverride(ctx, second))

	got, err = store.Load(ctx, trace.DecisionID)
	require.NoError(t, err)
	require.Len(t, got.Overrides, 2)
	assert.Equal(t, "HOLD", got.Overrides[0].Decision)
	assert.Equal(t, "HIRE", got.EffectiveDecision())
	assert.Equal(t, "PROCEED", got.FinalDecision)
	assert.True(t, second.Timestamp.Equal(got.Overrides[1].Timestamp))

	missing := uuid.NewString()
	_, err = store.Load(ctx, missing)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, store.AppendOverride(ctx, Override{DecisionID: missing, Decision: "HIRE"}), ErrNotFound)

	_, err = store.Load(ctx, "../etc/passwd")
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "audit"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

func TestFileStoreFailedAppendLeavesNoTrace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	trace := sampleTrace(t)
	trace.BaseScore = math.NaN()
	require.Error(t, store.Append(ctx, trace))

	_, err = os.Stat(store.tracePath(trace.DecisionID))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = store.Load(ctx, trace.DecisionID)
	require.ErrorIs(t, err, ErrNotFound)

	trace.BaseScore = 66.67
	require.NoError(t, store.Append(ctx, trace))

	got, err := store.Load(ctx, trace.DecisionID)
	require.NoError(t, err)
	assert.InDelta(t, 66.67, got.BaseScore, 1e-9)
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	none, err := Open(ctx, Config{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, none)

	file, err := Open(ctx, Config{Backend: "FILE", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, file)

	_, err = Open(ctx, Config{Backend: "s3"})
	require.Error(t, err)

	_, err = Open(ctx, Config{Backend: BackendFile})
	require.Error(t, err)
}

func TestNewTrace(t *testing.T) {
	t.Parallel()

	a := sampleTrace(t)
	b := sampleTrace(t)

	assert.NotEqual(t, a.DecisionID, b.DecisionID)
	assert.Equal(t, a.ResumeHash, b.ResumeHash)
	assert.Len(t, a.ResumeHash, 64)
	assert.Equal(t, ModelVersion, a.ModelVersion)
	assert.Equal(t, PipelineVersion, a.PipelineVersion)

	empty := NewTrace(Decision{}, time.Now())
	assert.NotNil(t, empty.Matched)
	assert.NotNil(t, empty.Missing)
}
