// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the array types the update kernels operate on.
//
// # Overview
//
// The kernels accept any Vector: a plain slice, a regular-strided view or
// an Array allocated on a device. Matrices carry (rows, cols) over a flat
// element view, including pitched storage and gonum dense matrices.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/rprop/backend/cpu"
//	    "github.com/born-ml/rprop/device"
//	    "github.com/born-ml/rprop/tensor"
//	)
//
//	func main() {
//	    mgr := device.NewManager(cpu.New(0))
//	    ctx, err := mgr.SelectDevice(0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    w, err := tensor.Zeros[float32](ctx, tensor.Shape{128})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer w.Free()
//	}
//
// # Memory
//
// Allocation reserves the array's bytes against the device budget of its
// Context and fails with device.ErrOutOfMemory when the budget is spent.
// Free returns them.
package tensor
