package optim

import "github.com/born-ml/rprop/internal/tensor"

// SGD implements weight-decayed gradient descent.
//
// Update rule:
//
//	param = (1 - decay*lr) * param + lr * direction
//
// Example:
//
//	optimizer := optim.NewSGD(params, optim.SGDConfig{
//	    LR:    0.01,
//	    Decay: 1e-4,
//	})
type SGD[T tensor.Float] struct {
	params  []*Parameter[T]
	lr      float64
	decay   float64
	kernels Kernels
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR      float64  // Learning rate (default: 0.01)
	Decay   float64  // Weight decay (default: 0, no decay)
	Kernels *Kernels // Kernel settings (default: DefaultKernels())
}

// NewSGD creates a new SGD optimizer.
func NewSGD[T tensor.Float](params []*Parameter[T], config SGDConfig) *SGD[T] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	k := DefaultKernels()
	if config.Kernels != nil {
		k = *config.Kernels
	}

	return &SGD[T]{
		params:  params,
		lr:      config.LR,
		decay:   config.Decay,
		kernels: k,
	}
}

// Step performs a single optimization step.
//
// Parameters with no direction are skipped.
func (s *SGD[T]) Step() error {
	for _, p := range s.params {
		if p.Grad == nil {
			continue
		}
		WeightDecayStepWith[T](s.kernels, p.Value, p.Grad, T(s.lr), T(s.decay))
	}
	return nil
}

// ZeroGrad clears directions for all parameters.
func (s *SGD[T]) ZeroGrad() {
	for _, p := range s.params {
		p.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD[T]) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD[T]) SetLR(lr float64) {
	s.lr = lr
}
