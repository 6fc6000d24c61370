package cmd

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillfit/internal/audit"
	"github.com/spigell/skillfit/internal/pipeline"
)

func TestDefaultConfigMatchesPipelineDefaults(t *testing.T) {
	config, err := getConfig()
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, pipeline.DefaultConfig(), config.pipelineConfig())
	assert.True(t, config.Semantic.Enabled)
	assert.Equal(t, backendTFIDF, config.Semantic.Backend)
	assert.Equal(t, audit.BackendNone, config.Audit.Backend)
}

func TestLoadCatalogFallsBackToRoleSkills(t *testing.T) {
	t.Parallel()

	config := &Config{}
	roles, err := loadRoles(config)
	require.NoError(t, err)
	assert.Equal(t, 19, roles.Len())

	catalog, err := loadCatalog(config, roles)
	require.NoError(t, err)
	assert.True(t, sort.StringsAreSorted(catalog))
	assert.Contains(t, catalog, "python")
	assert.Contains(t, catalog, "ticketing systems")

	seen := make(map[string]struct{}, len(catalog))
	for _, name := range catalog {
		_, dup := seen[name]
		assert.False(t, dup, name)
		seen[name] = struct{}{}
	}
}
