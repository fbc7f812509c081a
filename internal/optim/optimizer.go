// Package optim implements the weight-update engine.
//
// This package provides:
//   - Elementwise kernels: WeightDecayStep and RPROP, over flat vectors,
//     plus matrix wrappers that check dims and forward to the flat kernels
//   - Optimizer interface: stateful optimizers over named parameters
//   - SGD: weight-decayed gradient descent
//   - Resilient: RPROP with per-parameter rate and gradient history
//
// Gradients passed to the kernels are descent directions: the kernels add
// them to the weights. Pass the negated loss gradient.
//
// Example usage:
//
//	opt := optim.NewResilient(params, optim.ResilientConfig{InitialRate: 0.01})
//	defer opt.Release()
//
//	for step := range steps {
//	    computeDirections(params)
//	    if err := opt.Step(); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"github.com/born-ml/rprop/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter that has a direction.
	//
	// It returns an error only when optimizer state cannot be allocated;
	// size mismatches between a parameter and its direction panic.
	Step() error

	// ZeroGrad clears all parameter directions.
	ZeroGrad()

	// GetLR returns the current (initial, for adaptive optimizers) learning rate.
	GetLR() float64
}

// Parameter is a named weight array paired with its descent direction.
type Parameter[T tensor.Float] struct {
	Name  string
	Value *tensor.Array[T]
	Grad  *tensor.Array[T] // descent direction; nil means "skip this step"
}

// NewParameter creates a parameter and allocates a zero direction next to value.
func NewParameter[T tensor.Float](name string, value *tensor.Array[T]) (*Parameter[T], error) {
	grad, err := tensor.Zeros[T](value.Context(), value.Shape())
	if err != nil {
		return nil, err
	}
	return &Parameter[T]{Name: name, Value: value, Grad: grad}, nil
}

// ZeroGrad fills the direction with zeros.
func (p *Parameter[T]) ZeroGrad() {
	if p.Grad == nil {
		return
	}
	clear(p.Grad.Data())
}
