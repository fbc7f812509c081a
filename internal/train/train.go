// Package train drives an optimizer against a synthetic quadratic objective.
//
// The objective is L(w) = 0.5 * sum((w[i] - t[i])^2) for random targets t.
// Each step writes the descent direction t - w into the parameter's Grad
// and lets the optimizer apply it.
package train

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/born-ml/rprop/internal/config"
	"github.com/born-ml/rprop/internal/device"
	"github.com/born-ml/rprop/internal/optim"
	"github.com/born-ml/rprop/internal/serialization"
	"github.com/born-ml/rprop/internal/tensor"
)

// weightsKey names the weight array in a checkpoint.
const weightsKey = "w"

// stateful optimizers carry per-parameter arrays that go into checkpoints.
type stateful interface {
	StateDict() map[string]*tensor.Array[float64]
	LoadStateDict(map[string]*tensor.Array[float64]) error
}

// StepObserver is notified after every optimizer step.
type StepObserver interface {
	StepDone(kernel string)
	LossObserved(loss float64)
}

// Result summarizes a run.
type Result struct {
	FirstStep   int // 1, or one past the resumed checkpoint's step
	Steps       int // last step taken
	InitialLoss float64
	FinalLoss   float64
}

// Run trains cfg.Size weights up to step cfg.Steps on the device of ctx.
// It stops early with the context error when runCtx is cancelled.
//
// With cfg.Checkpoint set, an existing checkpoint is resumed and the final
// state is written back to it.
func Run(runCtx context.Context, ctx device.Context, cfg *config.Config, logger zerolog.Logger, obs StepObserver) (Result, error) {
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), 0)) //nolint:gosec // synthetic targets
	targets := make([]float64, cfg.Size)
	for i := range targets {
		targets[i] = rng.Float64()*2 - 1
	}

	w, err := tensor.Zeros[float64](ctx, tensor.Shape{cfg.Size})
	if err != nil {
		return Result{}, fmt.Errorf("train: weights: %w", err)
	}
	defer w.Free()

	p, err := optim.NewParameter("w", w)
	if err != nil {
		return Result{}, fmt.Errorf("train: direction: %w", err)
	}
	defer p.Grad.Free()

	kernels := cfg.Kernels()
	params := []*optim.Parameter[float64]{p}
	var opt optim.Optimizer
	switch cfg.Optimizer {
	case "sgd":
		opt = optim.NewSGD(params, optim.SGDConfig{LR: cfg.LearningRate, Decay: cfg.RPROP.Decay, Kernels: &kernels})
	default:
		r := optim.NewResilient(params, cfg.Resilient(&kernels))
		defer r.Release()
		opt = r
	}

	res := Result{FirstStep: 1}
	if cfg.Checkpoint != "" {
		step, err := resume(cfg, ctx, w, opt)
		if err != nil {
			return res, err
		}
		if step > 0 {
			logger.Info().Str("path", cfg.Checkpoint).Int("step", step).Msg("resumed checkpoint")
		}
		res.FirstStep = step + 1
		res.Steps = step
	}

	logEvery := max(cfg.Steps/10, 1)
	res.InitialLoss = direction(p, targets)
	res.FinalLoss = res.InitialLoss
	logger.Info().Str("optimizer", cfg.Optimizer).Int("size", cfg.Size).Float64("loss", res.InitialLoss).Msg("training started")

	loss := res.InitialLoss
	for step := res.FirstStep; step <= cfg.Steps; step++ {
		if err := runCtx.Err(); err != nil {
			return res, fmt.Errorf("train: step %d: %w", step, err)
		}
		if err := opt.Step(); err != nil {
			return res, fmt.Errorf("train: step %d: %w", step, err)
		}
		loss = direction(p, targets)
		res.Steps = step
		res.FinalLoss = loss

		if obs != nil {
			obs.StepDone(cfg.Optimizer)
			obs.LossObserved(loss)
		}
		if step%logEvery == 0 || step == cfg.Steps {
			logger.Debug().Int("step", step).Float64("loss", loss).Msg("step")
		}
	}

	logger.Info().Int("steps", res.Steps).Float64("loss", loss).Msg("training finished")

	if cfg.Checkpoint != "" {
		arrays := map[string]*tensor.Array[float64]{weightsKey: w}
		if so, ok := opt.(stateful); ok {
			maps.Copy(arrays, so.StateDict())
		}
		meta := serialization.Meta{Step: res.Steps, Loss: loss, Optimizer: cfg.Optimizer}
		if err := serialization.Write(cfg.Checkpoint, meta, arrays, map[string]string{"platform": cfg.Platform}); err != nil {
			return res, fmt.Errorf("train: %w", err)
		}
		logger.Info().Str("path", cfg.Checkpoint).Int("step", res.Steps).Msg("checkpoint written")
	}
	return res, nil
}

// resume restores weights and optimizer state from cfg.Checkpoint and
// returns the step it was taken at. A missing file is a fresh start.
func resume(cfg *config.Config, ctx device.Context, w *tensor.Array[float64], opt optim.Optimizer) (int, error) {
	cp, err := serialization.Read[float64](cfg.Checkpoint, ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("train: %w", err)
	}
	defer cp.Free()

	if got := cp.Header.Checkpoint.Optimizer; got != cfg.Optimizer {
		return 0, fmt.Errorf("train: checkpoint was taken with %s, configured %s", got, cfg.Optimizer)
	}
	saved, err := cp.Array(weightsKey)
	if err != nil {
		return 0, fmt.Errorf("train: %w", err)
	}
	if err := tensor.CopyTo[float64](w, saved); err != nil {
		return 0, fmt.Errorf("train: checkpoint weights: %w", err)
	}
	if so, ok := opt.(stateful); ok {
		if err := so.LoadStateDict(cp.Arrays); err != nil {
			return 0, fmt.Errorf("train: %w", err)
		}
	}
	return cp.Header.Checkpoint.Step, nil
}

// direction writes t - w into p.Grad and returns the objective at w.
func direction(p *optim.Parameter[float64], targets []float64) float64 {
	w, g := p.Value.Data(), p.Grad.Data()
	var loss float64
	for i, t := range targets {
		d := t - w[i]
		g[i] = d
		loss += 0.5 * d * d
	}
	return loss
}
