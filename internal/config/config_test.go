package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "cpu", cfg.Platform)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
platform: cuda
device: 1
memory_bytes: 4096
steps: 20
optimizer: sgd
log_level: debug
rprop:
  eta_plus: 1.5
  initial_rate: 0.2
  decay: 0.001
parallel:
  enabled: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "cuda", cfg.Platform)
	assert.Equal(t, 1, cfg.Device)
	assert.Equal(t, uint64(4096), cfg.MemoryBytes)
	assert.Equal(t, 20, cfg.Steps)
	assert.Equal(t, 1024, cfg.Size) // default kept
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())

	k := cfg.Kernels()
	assert.Equal(t, 1.5, k.RPROP.EtaPlus)
	assert.Equal(t, 0.5, k.RPROP.EtaMinus)
	assert.False(t, k.Parallel.Enabled)

	rc := cfg.Resilient(&k)
	assert.Equal(t, 0.2, rc.InitialRate)
	assert.Equal(t, 0.001, rc.Decay)
	assert.Same(t, &k, rc.Kernels)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "platfrom: cpu\n"},
		{"bad platform", "platform: tpu\n"},
		{"bad optimizer", "optimizer: adam\n"},
		{"negative device", "device: -1\n"},
		{"zero steps", "steps: 0\n"},
		{"bad level", "log_level: loud\n"},
		{"eta minus out of range", "rprop:\n  eta_minus: 1.5\n"},
		{"rate bounds inverted", "rprop:\n  rate_min: 10\n  rate_max: 1\n"},
		{"negative decay", "rprop:\n  decay: -0.1\n"},
		{"initial rate above max", "rprop:\n  initial_rate: 100\n"},
		{"initial rate below min", "rprop:\n  rate_min: 0.1\n  initial_rate: 0.01\n"},
		{"not yaml", "steps: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{Platform: "webgpu", Device: -1, Steps: 7, MetricsAddr: ":9100"})

	assert.Equal(t, "webgpu", cfg.Platform)
	assert.Equal(t, 0, cfg.Device)
	assert.Equal(t, 7, cfg.Steps)
	assert.Equal(t, 1024, cfg.Size)
	assert.Equal(t, ":9100", cfg.MetricsAddr)

	cfg.ApplyOverrides(Overrides{Device: 2, Optimizer: "sgd", Checkpoint: "run.ckpt"})
	assert.Equal(t, 2, cfg.Device)
	assert.Equal(t, "run.ckpt", cfg.Checkpoint)
	assert.Equal(t, "sgd", cfg.Optimizer)
}

func TestKernelsDefaultWorkers(t *testing.T) {
	cfg := Default()
	cfg.Parallel.NumWorkers = 0
	assert.Positive(t, cfg.Kernels().Parallel.NumWorkers)
}
