// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/rprop/internal/optim"
	"github.com/born-ml/rprop/tensor"
)

// RPROP step-size defaults.
const (
	DefaultEtaPlus  = optim.DefaultEtaPlus
	DefaultEtaMinus = optim.DefaultEtaMinus
	DefaultRateMin  = optim.DefaultRateMin
	DefaultRateMax  = optim.DefaultRateMax
)

// RPROPConfig holds the RPROP step-size constants.
type RPROPConfig = optim.RPROPConfig

// Kernels carries execution settings for the update kernels.
type Kernels = optim.Kernels

// DefaultKernels returns kernels with default parallelism and constants.
func DefaultKernels() Kernels {
	return optim.DefaultKernels()
}

// PreconditionError is the panic value for mismatched operand sizes.
type PreconditionError = optim.PreconditionError

// Decision is the per-element RPROP rate adjustment.
type Decision = optim.Decision

// Decisions.
const (
	Hold   = optim.Hold
	Grow   = optim.Grow
	Shrink = optim.Shrink
)

// Sign returns -1, 0 or +1. NaN has sign 0.
func Sign[T tensor.Float](x T) T {
	return optim.Sign(x)
}

// Decide classifies an element from its current and previous direction.
func Decide[T tensor.Float](grad, prev T) Decision {
	return optim.Decide(grad, prev)
}

// CheckLengths returns a *PreconditionError unless all lengths match.
func CheckLengths[T tensor.Float](op string, vecs ...tensor.Vector[T]) error {
	return optim.CheckLengths(op, vecs...)
}

// CheckDims returns a *PreconditionError unless all dims match.
func CheckDims[T tensor.Float](op string, mats ...tensor.Matrix[T]) error {
	return optim.CheckDims(op, mats...)
}

// WeightDecayStep computes W = (1 - decay*learnrate)*W + learnrate*dW.
func WeightDecayStep[T tensor.Float](w, dw tensor.Vector[T], learnrate, decay T) {
	optim.WeightDecayStep(w, dw, learnrate, decay)
}

// WeightDecayStepWith is WeightDecayStep with explicit kernel settings.
func WeightDecayStepWith[T tensor.Float](k Kernels, w, dw tensor.Vector[T], learnrate, decay T) {
	optim.WeightDecayStepWith(k, w, dw, learnrate, decay)
}

// RPROP applies one resilient-propagation step with default constants.
func RPROP[T tensor.Float](w, dw, dwOld, rate tensor.Vector[T], decay T) {
	optim.RPROP(w, dw, dwOld, rate, decay)
}

// RPROPWith is RPROP with explicit kernel settings and constants.
func RPROPWith[T tensor.Float](k Kernels, w, dw, dwOld, rate tensor.Vector[T], decay T) {
	optim.RPROPWith(k, w, dw, dwOld, rate, decay)
}

// WeightDecayStepMatrix is WeightDecayStep over matrices.
func WeightDecayStepMatrix[T tensor.Float](w, dw tensor.Matrix[T], learnrate, decay T) {
	optim.WeightDecayStepMatrix(w, dw, learnrate, decay)
}

// RPROPMatrix is RPROP over matrices.
func RPROPMatrix[T tensor.Float](w, dw, dwOld, rate tensor.Matrix[T], decay T) {
	optim.RPROPMatrix(w, dw, dwOld, rate, decay)
}

// Optimizer is the common interface of the stateful optimizers.
type Optimizer = optim.Optimizer

// Parameter is a named weight array with its direction.
type Parameter[T tensor.Float] = optim.Parameter[T]

// NewParameter wraps value and allocates a zero direction beside it.
func NewParameter[T tensor.Float](name string, value *tensor.Array[T]) (*Parameter[T], error) {
	return optim.NewParameter(name, value)
}

// SGD is the weight-decayed gradient optimizer.
type SGD[T tensor.Float] = optim.SGD[T]

// SGDConfig configures SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer.
func NewSGD[T tensor.Float](params []*Parameter[T], config SGDConfig) *SGD[T] {
	return optim.NewSGD(params, config)
}

// Resilient is the RPROP optimizer. It owns per-parameter rate and
// history arrays allocated on the parameter's device.
type Resilient[T tensor.Float] = optim.Resilient[T]

// ResilientConfig configures Resilient.
type ResilientConfig = optim.ResilientConfig

// NewResilient creates an RPROP optimizer.
func NewResilient[T tensor.Float](params []*Parameter[T], config ResilientConfig) *Resilient[T] {
	return optim.NewResilient(params, config)
}
