// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device manages the devices that back array storage.
//
// A Platform enumerates devices of one kind and reports their memory. A
// Manager tracks which device is selected and hands out the Context that
// allocation takes explicitly:
//
//	mgr := device.NewManager(cpu.New(0), device.WithLogger(logger))
//	n, err := mgr.CountDevices()
//	ctx, err := mgr.SelectDevice(0)
//	free, err := mgr.FreeMemory(0)
//
// An index outside [0, CountDevices()) fails with ErrInvalidDevice and
// leaves the selection unchanged. Driver failures wrap ErrDeviceQuery.
package device

import (
	"github.com/born-ml/rprop/internal/device"
)

// Platform is a family of devices reachable through one driver.
type Platform = device.Platform

// Allocator accounts device memory for array storage.
type Allocator = device.Allocator

// Kind identifies the platform family of a Context.
type Kind = device.Kind

// Platform families.
const (
	KindNone   = device.KindNone
	KindCPU    = device.KindCPU
	KindCUDA   = device.KindCUDA
	KindWebGPU = device.KindWebGPU
)

// Context is the allocation target handed out by SelectDevice. The zero
// Context has no device and rejects allocation with ErrNoDevice.
type Context = device.Context

// Manager tracks the selected device of a Platform.
type Manager = device.Manager

// Option configures a Manager.
type Option = device.Option

// Observer receives selection and memory events.
type Observer = device.Observer

// Info summarizes one device.
type Info = device.Info

// Budget is a thread-safe byte budget.
type Budget = device.Budget

// Error types.
type (
	InvalidDeviceError = device.InvalidDeviceError
	QueryError         = device.QueryError
	OutOfMemoryError   = device.OutOfMemoryError
)

// Sentinel errors for errors.Is.
var (
	ErrInvalidDevice = device.ErrInvalidDevice
	ErrDeviceQuery   = device.ErrDeviceQuery
	ErrNoDevice      = device.ErrNoDevice
	ErrOutOfMemory   = device.ErrOutOfMemory
)

// NewManager creates a Manager over platform. No device is selected yet.
func NewManager(platform Platform, opts ...Option) *Manager {
	return device.NewManager(platform, opts...)
}

// WithLogger sets the logger used for selection and query events.
var WithLogger = device.WithLogger

// WithObserver attaches an observer for selection and memory events.
var WithObserver = device.WithObserver

// NewBudget creates a budget of total bytes.
func NewBudget(total uint64) *Budget {
	return device.NewBudget(total)
}

// NewContext builds a Context for a custom Platform implementation.
func NewContext(kind Kind, index int, alloc Allocator) Context {
	return device.NewContext(kind, index, alloc)
}
