// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the weight-update engine.
//
// # Overview
//
// This package contains:
//   - WeightDecayStep: weight-decayed gradient step
//   - RPROP: resilient propagation with per-element adaptive rates
//   - SGD and Resilient: stateful optimizers over named parameters
//
// # Kernels
//
// The kernels update their arguments in place and accept any tensor.Vector
// (or tensor.Matrix for the Matrix variants):
//
//	optim.WeightDecayStep(w, dw, 0.01, 1e-4)
//	optim.RPROP(w, dw, dwOld, rate, 1e-4)
//
// dW is the descent direction and is added to W. RPROP grows a rate by
// EtaPlus (clamped to RateMax) where dW and dWold agree in sign, shrinks it
// by EtaMinus (clamped to RateMin) and holds W where they disagree, and
// always stores dW into dWold.
//
// Operands of different sizes are a programmer error: the kernels panic
// with *PreconditionError before touching any element.
//
// # Optimizers
//
//	w, _ := tensor.Zeros[float32](ctx, tensor.Shape{256})
//	p, _ := optim.NewParameter("w", w)
//	opt := optim.NewResilient([]*optim.Parameter[float32]{p}, optim.ResilientConfig{
//	    InitialRate: 0.01,
//	})
//	defer opt.Release()
//
//	for range steps {
//	    computeDirection(p.Grad)
//	    if err := opt.Step(); err != nil {
//	        return err
//	    }
//	}
package optim
