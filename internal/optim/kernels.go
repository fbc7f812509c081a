package optim

import (
	"fmt"

	"github.com/born-ml/rprop/internal/parallel"
	"github.com/born-ml/rprop/internal/tensor"
)

// Conventional RPROP constants.
const (
	DefaultEtaPlus  = 1.2
	DefaultEtaMinus = 0.5
	DefaultRateMin  = 1e-6
	DefaultRateMax  = 50.0
)

// RPROPConfig holds the RPROP step-size constants. Zero fields take the
// conventional defaults.
type RPROPConfig struct {
	EtaPlus  float64 // Growth factor on sign agreement (default: 1.2)
	EtaMinus float64 // Shrink factor on sign flip (default: 0.5)
	RateMin  float64 // Lower clamp for the per-element rate (default: 1e-6)
	RateMax  float64 // Upper clamp for the per-element rate (default: 50)
}

// WithDefaults returns c with zero fields replaced by defaults.
func (c RPROPConfig) WithDefaults() RPROPConfig {
	if c.EtaPlus == 0 {
		c.EtaPlus = DefaultEtaPlus
	}
	if c.EtaMinus == 0 {
		c.EtaMinus = DefaultEtaMinus
	}
	if c.RateMin == 0 {
		c.RateMin = DefaultRateMin
	}
	if c.RateMax == 0 {
		c.RateMax = DefaultRateMax
	}
	return c
}

// Validate checks that the constants describe a sane RPROP schedule.
func (c RPROPConfig) Validate() error {
	c = c.WithDefaults()
	if c.EtaPlus <= 1 {
		return fmt.Errorf("optim: rprop eta plus must be > 1, got %g", c.EtaPlus)
	}
	if c.EtaMinus <= 0 || c.EtaMinus >= 1 {
		return fmt.Errorf("optim: rprop eta minus must be in (0, 1), got %g", c.EtaMinus)
	}
	if c.RateMin <= 0 || c.RateMin > c.RateMax {
		return fmt.Errorf("optim: rprop rate bounds must satisfy 0 < min <= max, got [%g, %g]", c.RateMin, c.RateMax)
	}
	return nil
}

// Kernels carries the execution settings for the elementwise update kernels.
//
// Kernels holds no per-call state: calls on disjoint arrays may run
// concurrently, and back-to-back calls need no synchronization beyond the
// caller not overlapping calls on the same arrays.
type Kernels struct {
	Parallel parallel.Config
	RPROP    RPROPConfig
}

// DefaultKernels returns kernels with default parallelism and RPROP constants.
func DefaultKernels() Kernels {
	return Kernels{
		Parallel: parallel.DefaultConfig(),
		RPROP:    RPROPConfig{}.WithDefaults(),
	}
}

// WeightDecayStep applies one step of weight-decayed gradient descent:
//
//	W[i] = (1 - decay*learnrate) * W[i] + learnrate * dW[i]
//
// dW is the descent direction and is only read. A decay of 0 disables
// decay. It panics with *PreconditionError if the lengths differ.
func WeightDecayStep[T tensor.Float](w, dw tensor.Vector[T], learnrate, decay T) {
	WeightDecayStepWith(DefaultKernels(), w, dw, learnrate, decay)
}

// WeightDecayStepWith is WeightDecayStep using the settings in k.
func WeightDecayStepWith[T tensor.Float](k Kernels, w, dw tensor.Vector[T], learnrate, decay T) {
	mustMatch("weight_decay_step", w, dw)

	keep := 1 - decay*learnrate

	if wd, ok := contiguous(w, dw); ok {
		ws, ds := wd[0], wd[1]
		parallel.ForRange(len(ws), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				ws[i] = keep*ws[i] + learnrate*ds[i]
			}
		}, k.Parallel)
		return
	}

	parallel.ForRange(w.Len(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			w.Set(i, keep*w.At(i)+learnrate*dw.At(i))
		}
	}, k.Parallel)
}

// RPROP applies one resilient-propagation step with default constants.
//
// For every element it compares the sign of dW with dWOld, grows, shrinks or
// holds rate, clamps it to [RateMin, RateMax], and then moves
//
//	W[i] = (1 - decay*rate[i]) * W[i] + rate[i] * sign(dW[i])
//
// except after a sign flip, where W[i] stays put for this step. Finally
// dWOld[i] = dW[i]. W, dWOld and rate are updated in place; dW is only read.
// It panics with *PreconditionError if the lengths differ.
func RPROP[T tensor.Float](w, dw, dwOld, rate tensor.Vector[T], decay T) {
	RPROPWith(DefaultKernels(), w, dw, dwOld, rate, decay)
}

// RPROPWith is RPROP using the settings in k.
func RPROPWith[T tensor.Float](k Kernels, w, dw, dwOld, rate tensor.Vector[T], decay T) {
	mustMatch("rprop", w, dw, dwOld, rate)

	cfg := k.RPROP.WithDefaults()
	up, down := T(cfg.EtaPlus), T(cfg.EtaMinus)
	lo, hi := T(cfg.RateMin), T(cfg.RateMax)

	step := func(wi, g, prev, r T) (T, T) {
		d := Decide(g, prev)
		switch d {
		case Grow:
			r *= up
		case Shrink:
			r *= down
		}
		// Every branch clamps, so rates seeded out of range are pulled in.
		r = min(max(r, lo), hi)
		if d == Shrink {
			return wi, r
		}
		return (1-decay*r)*wi + r*Sign(g), r
	}

	if s, ok := contiguous(w, dw, dwOld, rate); ok {
		ws, gs, ps, rs := s[0], s[1], s[2], s[3]
		parallel.ForRange(len(ws), func(a, b int) {
			for i := a; i < b; i++ {
				ws[i], rs[i] = step(ws[i], gs[i], ps[i], rs[i])
				ps[i] = gs[i]
			}
		}, k.Parallel)
		return
	}

	parallel.ForRange(w.Len(), func(a, b int) {
		for i := a; i < b; i++ {
			g := dw.At(i)
			wi, r := step(w.At(i), g, dwOld.At(i), rate.At(i))
			w.Set(i, wi)
			rate.Set(i, r)
			dwOld.Set(i, g)
		}
	}, k.Parallel)
}

// WeightDecayStepMatrix checks that w and dw have equal dims and applies
// WeightDecayStep to their flat views.
func WeightDecayStepMatrix[T tensor.Float](w, dw tensor.Matrix[T], learnrate, decay T) {
	WeightDecayStepMatrixWith(DefaultKernels(), w, dw, learnrate, decay)
}

// WeightDecayStepMatrixWith is WeightDecayStepMatrix using the settings in k.
func WeightDecayStepMatrixWith[T tensor.Float](k Kernels, w, dw tensor.Matrix[T], learnrate, decay T) {
	mustMatchDims("weight_decay_step", w, dw)
	WeightDecayStepWith(k, w.Vec(), dw.Vec(), learnrate, decay)
}

// RPROPMatrix checks that all four matrices have equal dims and applies
// RPROP to their flat views.
func RPROPMatrix[T tensor.Float](w, dw, dwOld, rate tensor.Matrix[T], decay T) {
	RPROPMatrixWith(DefaultKernels(), w, dw, dwOld, rate, decay)
}

// RPROPMatrixWith is RPROPMatrix using the settings in k.
func RPROPMatrixWith[T tensor.Float](k Kernels, w, dw, dwOld, rate tensor.Matrix[T], decay T) {
	mustMatchDims("rprop", w, dw, dwOld, rate)
	RPROPWith(k, w.Vec(), dw.Vec(), dwOld.Vec(), rate.Vec(), decay)
}

// contiguous returns the backing slices when every vector is dense.
func contiguous[T tensor.Float](vecs ...tensor.Vector[T]) ([][]T, bool) {
	out := make([][]T, len(vecs))
	for i, v := range vecs {
		c, ok := v.(tensor.Contiguous[T])
		if !ok {
			return nil, false
		}
		out[i] = c.Data()
	}
	return out, true
}
