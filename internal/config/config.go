// Package config loads the settings of a training run from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/rprop/internal/device"
	"github.com/born-ml/rprop/internal/optim"
	"github.com/born-ml/rprop/internal/parallel"
)

// Config captures the knobs of a training run.
type Config struct {
	Platform     string  `yaml:"platform"`
	Device       int     `yaml:"device"`
	MemoryBytes  uint64  `yaml:"memory_bytes"`
	Steps        int     `yaml:"steps"`
	Size         int     `yaml:"size"`
	Seed         int64   `yaml:"seed"`
	Optimizer    string  `yaml:"optimizer"`
	LearningRate float64 `yaml:"learning_rate"`
	LogLevel     string  `yaml:"log_level"`
	MetricsAddr  string  `yaml:"metrics_addr"`
	Checkpoint   string  `yaml:"checkpoint"`
	RPROP        RPROP   `yaml:"rprop"`
	Parallel     Worker  `yaml:"parallel"`
}

// RPROP holds the resilient-propagation constants.
type RPROP struct {
	EtaPlus     float64 `yaml:"eta_plus"`
	EtaMinus    float64 `yaml:"eta_minus"`
	RateMin     float64 `yaml:"rate_min"`
	RateMax     float64 `yaml:"rate_max"`
	InitialRate float64 `yaml:"initial_rate"`
	Decay       float64 `yaml:"decay"`
}

// Worker controls kernel parallelism.
type Worker struct {
	Enabled      bool `yaml:"enabled"`
	NumWorkers   int  `yaml:"num_workers"`
	MinChunkSize int  `yaml:"min_chunk_size"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Platform    string
	Optimizer   string
	Device      int // negative means unset
	Steps       int
	Size        int
	LogLevel    string
	MetricsAddr string
	Checkpoint  string
}

// Default returns a runnable configuration for the host platform.
func Default() *Config {
	p := parallel.DefaultConfig()
	return &Config{
		Platform:  "cpu",
		Steps:     100,
		Size:      1024,
		Seed:      1,
		Optimizer: "rprop",
		LogLevel:  "info",
		RPROP: RPROP{
			EtaPlus:     optim.DefaultEtaPlus,
			EtaMinus:    optim.DefaultEtaMinus,
			RateMin:     optim.DefaultRateMin,
			RateMax:     optim.DefaultRateMax,
			InitialRate: 0.01,
		},
		Parallel: Worker{
			Enabled:      p.Enabled,
			NumWorkers:   p.NumWorkers,
			MinChunkSize: p.MinChunkSize,
		},
		LearningRate: 0.01,
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any set override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Platform != "" {
		c.Platform = o.Platform
	}
	if o.Optimizer != "" {
		c.Optimizer = o.Optimizer
	}
	if o.Device >= 0 {
		c.Device = o.Device
	}
	if o.Steps > 0 {
		c.Steps = o.Steps
	}
	if o.Size > 0 {
		c.Size = o.Size
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.MetricsAddr != "" {
		c.MetricsAddr = o.MetricsAddr
	}
	if o.Checkpoint != "" {
		c.Checkpoint = o.Checkpoint
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if device.KindOf(c.Platform) == device.KindNone {
		return fmt.Errorf("platform must be cpu, cuda or webgpu (got %q)", c.Platform)
	}
	if c.Optimizer != "rprop" && c.Optimizer != "sgd" {
		return fmt.Errorf("optimizer must be rprop or sgd (got %q)", c.Optimizer)
	}
	if c.Device < 0 {
		return fmt.Errorf("device must be >= 0 (got %d)", c.Device)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be > 0 (got %d)", c.Steps)
	}
	if c.Size <= 0 {
		return fmt.Errorf("size must be > 0 (got %d)", c.Size)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if err := c.rpropConfig().Validate(); err != nil {
		return err
	}
	if bounds := c.rpropConfig().WithDefaults(); c.RPROP.InitialRate < bounds.RateMin || c.RPROP.InitialRate > bounds.RateMax {
		return fmt.Errorf("rprop.initial_rate must be within [%g, %g] (got %g)",
			bounds.RateMin, bounds.RateMax, c.RPROP.InitialRate)
	}
	if c.RPROP.Decay < 0 {
		return fmt.Errorf("rprop.decay must be >= 0 (got %g)", c.RPROP.Decay)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.Parallel.NumWorkers < 0 || c.Parallel.MinChunkSize < 0 {
		return errors.New("parallel.num_workers and parallel.min_chunk_size must be >= 0")
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Kernels returns the update kernel settings. A zero worker count means
// one worker per CPU.
func (c *Config) Kernels() optim.Kernels {
	workers := c.Parallel.NumWorkers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return optim.Kernels{
		Parallel: parallel.Config{
			Enabled:      c.Parallel.Enabled,
			NumWorkers:   workers,
			MinChunkSize: c.Parallel.MinChunkSize,
		},
		RPROP: c.rpropConfig().WithDefaults(),
	}
}

// Resilient returns the optimizer settings using kernels k.
func (c *Config) Resilient(k *optim.Kernels) optim.ResilientConfig {
	return optim.ResilientConfig{
		InitialRate: c.RPROP.InitialRate,
		Decay:       c.RPROP.Decay,
		Kernels:     k,
	}
}

func (c *Config) rpropConfig() optim.RPROPConfig {
	return optim.RPROPConfig{
		EtaPlus:  c.RPROP.EtaPlus,
		EtaMinus: c.RPROP.EtaMinus,
		RateMin:  c.RPROP.RateMin,
		RateMax:  c.RPROP.RateMax,
	}
}
