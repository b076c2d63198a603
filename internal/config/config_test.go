package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "walkersim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
target_population: 120
use_fixed_seed: true
seed: 9
minimum_walk_distance: 25.5
world:
  size: 32
  seed: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.TargetPopulation)
	assert.True(t, cfg.UseFixedSeed)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, 25.5, cfg.MinimumWalkDistance)
	assert.Equal(t, 32, cfg.World.Size)
	assert.Equal(t, int64(3), cfg.World.Seed)

	// Untouched keys keep their defaults.
	def := Default()
	assert.Equal(t, def.APIPort, cfg.APIPort)
	assert.Equal(t, def.TickIntervalMs, cfg.TickIntervalMs)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"negative target":   "target_population: -1",
		"negative distance": "minimum_walk_distance: -0.5",
		"zero interval":     "tick_interval_ms: 0",
		"tiny world":        "world:\n  size: 1",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
