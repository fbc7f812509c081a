// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides GPU devices through WebGPU.
//
// The Platform exposes the default adapter as device 0. On windows the
// Backend also runs the RPROP and weight-decay kernels on device buffers:
//
//	p := webgpu.NewPlatform(0)
//	defer p.Release()
//	gpu, err := p.Backend()
//	w, err := gpu.Upload(weights)
//	err = gpu.RPROP(w, dw, dwOld, rate, optim.RPROPConfig{}, 0)
package webgpu

import (
	"github.com/born-ml/rprop/device"
	internalwebgpu "github.com/born-ml/rprop/internal/backend/webgpu"
)

// Platform is the WebGPU device family.
type Platform = internalwebgpu.Platform

// Compile-time check that Platform implements device.Platform.
var _ device.Platform = (*Platform)(nil)

// NewPlatform creates the platform with a device budget of memory bytes.
func NewPlatform(memory uint64) *Platform {
	return internalwebgpu.NewPlatform(memory)
}

// IsAvailable checks if WebGPU is available on the current system.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
