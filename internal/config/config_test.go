package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, models.DefaultParams(), cfg.Params)
	assert.Equal(t, dynamo.State{5, 2}, cfg.InitialState())
	assert.Equal(t, 100.0, cfg.TMax)
	assert.Equal(t, 1000, cfg.Points)
	assert.Equal(t, "rk45", cfg.Integrator)
	assert.NoError(t, cfg.Validate())
}

func TestGrid(t *testing.T) {
	cfg := DefaultConfig()
	grid := cfg.Grid()

	require.Len(t, grid, 1000)
	assert.Equal(t, 0.0, grid[0])
	assert.Equal(t, 100.0, grid[len(grid)-1])
}

func TestSolverConfigOverrides(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, dynamo.DefaultConfig(), cfg.SolverConfig())

	cfg.Solver = SolverConfig{RelTol: 1e-6, MaxSteps: 10}
	sc := cfg.SolverConfig()
	assert.Equal(t, 1e-6, sc.RelTol)
	assert.Equal(t, 10, sc.MaxSteps)
	assert.Equal(t, dynamo.DefaultConfig().AbsTol, sc.AbsTol)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"nan param", func(c *Config) { c.Params.H = math.NaN() }, dynamo.ErrInvalidParameter},
		{"inf prey", func(c *Config) { c.InitState.Prey = math.Inf(1) }, dynamo.ErrInvalidInitialCondition},
		{"negative t_max", func(c *Config) { c.TMax = -1 }, dynamo.ErrInvalidTimeGrid},
		{"no points", func(c *Config) { c.Points = 0 }, dynamo.ErrInvalidTimeGrid},
		{"negative step", func(c *Config) { c.Solver.Step = -0.1 }, ErrInvalidSolver},
		{"negative max_steps", func(c *Config) { c.Solver.MaxSteps = -1 }, ErrInvalidSolver},
		{"inf atol", func(c *Config) { c.Solver.AbsTol = math.Inf(1) }, ErrInvalidSolver},
		{"nan rtol", func(c *Config) { c.Solver.RelTol = math.NaN() }, ErrInvalidSolver},
		{"inf step", func(c *Config) { c.Solver.Step = math.Inf(1) }, ErrInvalidSolver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Params.K = 25
	cfg.InitState.Predator = 0.5
	cfg.Integrator = "rk4"
	cfg.Solver.Step = 0.005

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("params:\n  K: 40\nt_max: 12\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40.0, cfg.Params.K)
	assert.Equal(t, 1.0, cfg.Params.R)
	assert.Equal(t, 12.0, cfg.TMax)
	assert.Equal(t, 1000, cfg.Points)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("params: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestGetPreset(t *testing.T) {
	cfg, err := GetPreset("prey-free")
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.InitState.Prey)

	cfg.InitState.Prey = 99
	again, _ := GetPreset("prey-free")
	assert.Equal(t, 0.0, again.InitState.Prey, "presets must be returned as copies")

	_, err = GetPreset("nonexistent")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestPresetMutationDoesNotLeak(t *testing.T) {
	for _, name := range ListPresets() {
		first, err := GetPreset(name)
		require.NoError(t, err)
		want := first.Clone()

		first.TMax = 0
		first.Points = 1
		first.Integrator = "euler"
		first.Params.K = -1
		first.InitState.Predator = 123

		second, err := GetPreset(name)
		require.NoError(t, err)
		assert.Equal(t, want, second, name)
		assert.NotSame(t, first, second, name)
	}
}

func TestPresetsAreValid(t *testing.T) {
	names := ListPresets()
	assert.Equal(t, []string{"default", "oscillating", "predator-free", "prey-free", "strong-predation"}, names)

	for _, name := range names {
		cfg, err := GetPreset(name)
		require.NoError(t, err)
		assert.NoError(t, cfg.Validate(), name)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	assert.Equal(t, DefaultDataDir, DataDir())

	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("PREDPREY_LOG_LEVEL=debug\n"), 0644))

	t.Setenv(EnvLogLevel, "")
	os.Unsetenv(EnvLogLevel)
	require.NoError(t, LoadEnv(envFile, filepath.Join(dir, "absent.env")))
	assert.Equal(t, "debug", LogLevel())

	t.Setenv(EnvDataDir, "/tmp/runs")
	assert.Equal(t, "/tmp/runs", DataDir())
}
