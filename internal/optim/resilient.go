package optim

import (
	"fmt"

	"github.com/born-ml/rprop/internal/tensor"
)

// Resilient implements the RPROP optimizer.
//
// Each parameter gets two state arrays on its own device: the previous
// direction (starting at zero, so the first step holds every rate) and the
// per-element rate (starting at InitialRate). Both are allocated on the
// first step that sees the parameter.
//
// Example:
//
//	optimizer := optim.NewResilient(params, optim.ResilientConfig{
//	    InitialRate: 0.01,
//	    Decay:       1e-4,
//	})
//	defer optimizer.Release()
type Resilient[T tensor.Float] struct {
	params      []*Parameter[T]
	initialRate float64
	decay       float64
	kernels     Kernels
	state       map[*Parameter[T]]*rpropState[T]
}

type rpropState[T tensor.Float] struct {
	prev *tensor.Array[T]
	rate *tensor.Array[T]
}

// ResilientConfig holds configuration for the RPROP optimizer.
type ResilientConfig struct {
	InitialRate float64  // Starting per-element rate (default: 0.01)
	Decay       float64  // Weight decay (default: 0)
	Kernels     *Kernels // Kernel settings, including RPROP constants (default: DefaultKernels())
}

// NewResilient creates a new RPROP optimizer. InitialRate is clamped to
// [RateMin, RateMax].
func NewResilient[T tensor.Float](params []*Parameter[T], config ResilientConfig) *Resilient[T] {
	if config.InitialRate == 0 {
		config.InitialRate = 0.01
	}
	k := DefaultKernels()
	if config.Kernels != nil {
		k = *config.Kernels
	}
	k.RPROP = k.RPROP.WithDefaults()

	return &Resilient[T]{
		params:      params,
		initialRate: min(max(config.InitialRate, k.RPROP.RateMin), k.RPROP.RateMax),
		decay:       config.Decay,
		kernels:     k,
		state:       make(map[*Parameter[T]]*rpropState[T]),
	}
}

// Step performs a single RPROP step on every parameter with a direction.
func (r *Resilient[T]) Step() error {
	for _, p := range r.params {
		if p.Grad == nil {
			continue
		}
		st, err := r.stateFor(p)
		if err != nil {
			return err
		}
		RPROPWith[T](r.kernels, p.Value, p.Grad, st.prev, st.rate, T(r.decay))
	}
	return nil
}

func (r *Resilient[T]) stateFor(p *Parameter[T]) (*rpropState[T], error) {
	if st, ok := r.state[p]; ok {
		return st, nil
	}

	ctx := p.Value.Context()
	prev, err := tensor.Zeros[T](ctx, p.Value.Shape())
	if err != nil {
		return nil, fmt.Errorf("optim: rprop state for %q: %w", p.Name, err)
	}
	rate, err := tensor.Full(ctx, p.Value.Shape(), T(r.initialRate))
	if err != nil {
		prev.Free()
		return nil, fmt.Errorf("optim: rprop state for %q: %w", p.Name, err)
	}

	st := &rpropState[T]{prev: prev, rate: rate}
	r.state[p] = st
	return st, nil
}

// ZeroGrad clears directions for all parameters.
func (r *Resilient[T]) ZeroGrad() {
	for _, p := range r.params {
		p.ZeroGrad()
	}
}

// GetLR returns the initial per-element rate after clamping.
func (r *Resilient[T]) GetLR() float64 {
	return r.initialRate
}

// Rates returns the current rate array for p, or nil before its first step.
func (r *Resilient[T]) Rates(p *Parameter[T]) *tensor.Array[T] {
	if st, ok := r.state[p]; ok {
		return st.rate
	}
	return nil
}

// StateDict returns the optimizer state for serialization.
//
// State keys: "rate.{param_index}" and "prev.{param_index}".
func (r *Resilient[T]) StateDict() map[string]*tensor.Array[T] {
	stateDict := make(map[string]*tensor.Array[T])
	for i, p := range r.params {
		st, ok := r.state[p]
		if !ok {
			continue // No state yet (hasn't been used in training)
		}
		stateDict[fmt.Sprintf("rate.%d", i)] = st.rate
		stateDict[fmt.Sprintf("prev.%d", i)] = st.prev
	}
	return stateDict
}

// LoadStateDict restores state produced by StateDict. Arrays are copied
// into optimizer-owned storage on each parameter's device.
//
// Returns an error if a state array's size does not match its parameter.
func (r *Resilient[T]) LoadStateDict(stateDict map[string]*tensor.Array[T]) error {
	for i, p := range r.params {
		rate, hasRate := stateDict[fmt.Sprintf("rate.%d", i)]
		prev, hasPrev := stateDict[fmt.Sprintf("prev.%d", i)]
		if !hasRate && !hasPrev {
			continue
		}
		if !hasRate || !hasPrev {
			return fmt.Errorf("optim: incomplete rprop state for parameter %d", i)
		}
		if rate.Len() != p.Value.Len() || prev.Len() != p.Value.Len() {
			return fmt.Errorf("optim: rprop state size mismatch for parameter %d: expected %d, got rate=%d prev=%d",
				i, p.Value.Len(), rate.Len(), prev.Len())
		}

		st, err := r.stateFor(p)
		if err != nil {
			return err
		}
		copy(st.rate.Data(), rate.Data())
		copy(st.prev.Data(), prev.Data())
	}
	return nil
}

// Release frees all optimizer state arrays.
func (r *Resilient[T]) Release() {
	for p, st := range r.state {
		st.prev.Free()
		st.rate.Free()
		delete(r.state, p)
	}
}
