// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cuda provides NVIDIA devices through the CUDA driver API.
//
// libcuda is loaded at runtime without cgo. When it is missing, New still
// succeeds and every query fails with device.ErrDeviceQuery, so callers can
// fall back to the host:
//
//	p := cuda.New()
//	if !p.Available() {
//	    return cpu.New(0)
//	}
package cuda

import (
	"github.com/born-ml/rprop/device"
	internalcuda "github.com/born-ml/rprop/internal/backend/cuda"
)

// Platform enumerates CUDA devices.
type Platform = internalcuda.Platform

// Compile-time check that Platform implements device.Platform.
var _ device.Platform = (*Platform)(nil)

// New loads the CUDA driver.
func New() *Platform {
	return internalcuda.New()
}
