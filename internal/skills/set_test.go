package skills

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOperations(t *testing.T) {
	t.Parallel()

	resume := NewSet("python", "sql", "docker")
	role := NewSet("python", "sql", "statistics")

	assert.Equal(t, []string{"python", "sql"}, resume.Intersect(role).Sorted())
	assert.Equal(t, []string{"statistics"}, role.Difference(resume).Sorted())

	added := resume.With("statistics")
	assert.True(t, added.Has("statistics"))
	assert.False(t, resume.Has("statistics"), "With must not mutate the receiver")

	removed := resume.Without("python")
	assert.False(t, removed.Has("python"))
	assert.True(t, resume.Has("python"), "Without must not mutate the receiver")
}

func TestCanonicalSet(t *testing.T) {
	t.Parallel()

	s := CanonicalSet("ML", "machine learning", "MySQL")
	assert.Equal(t, []string{"machine learning", "sql"}, s.Sorted())
}

func TestSetJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(NewSet("sql", "python"))
	require.NoError(t, err)
	assert.JSONEq(t, `["python","sql"]`, string(data))

	var decoded Set
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Has("python"))
	assert.Equal(t, 2, decoded.Len())
}
