// Package device manages the accelerator devices that back array storage.
//
// A Platform enumerates devices of one kind (host CPU, CUDA, WebGPU) and
// reports their memory. The Manager layers selection state on top of a
// Platform and hands out Context values; array allocation takes a Context
// explicitly instead of reading a hidden global.
//
// Selecting a different device while arrays from the previous one are still
// in use is the caller's responsibility; the Manager does not track which
// arrays belong to which selection.
package device

import "fmt"

// Platform is a family of devices reachable through one driver.
//
// Implementations re-resolve the index on every call; no handle is retained.
type Platform interface {
	// Name returns a short platform name ("cpu", "cuda", "webgpu").
	Name() string

	// Count returns the number of devices. It fails with a *QueryError
	// when the platform cannot be queried at all.
	Count() (int, error)

	// MemInfo returns free and total memory in bytes for device index.
	MemInfo(index int) (free, total uint64, err error)

	// Bind makes index the target of subsequent allocations on the platform.
	Bind(index int) error

	// Allocator returns the memory accountant for device index.
	Allocator(index int) Allocator
}

// Allocator accounts device memory for array storage.
type Allocator interface {
	Reserve(n uint64) error
	Release(n uint64)
}

// Kind identifies the platform family of a Context.
type Kind int

// Supported platform families.
const (
	KindNone Kind = iota
	KindCPU
	KindCUDA
	KindWebGPU
)

// String returns a human-readable platform name.
func (k Kind) String() string {
	switch k {
	case KindCPU:
		return "cpu"
	case KindCUDA:
		return "cuda"
	case KindWebGPU:
		return "webgpu"
	default:
		return "none"
	}
}

// KindOf maps a platform name to its Kind.
func KindOf(name string) Kind {
	switch name {
	case "cpu":
		return KindCPU
	case "cuda":
		return KindCUDA
	case "webgpu":
		return KindWebGPU
	default:
		return KindNone
	}
}

// Context identifies a selected device and carries its allocator.
//
// The zero Context is the Uninitialized state: it is not Valid and every
// reservation through it fails with ErrNoDevice.
type Context struct {
	kind  Kind
	index int
	alloc Allocator
}

// NewContext builds a Context for device index of kind, allocating through alloc.
// It is meant for Platform implementations and tests; callers normally obtain
// contexts from Manager.SelectDevice.
func NewContext(kind Kind, index int, alloc Allocator) Context {
	return Context{kind: kind, index: index, alloc: alloc}
}

// Valid reports whether the context came from a device selection.
func (c Context) Valid() bool {
	return c.alloc != nil
}

// Kind returns the platform family.
func (c Context) Kind() Kind {
	return c.kind
}

// Index returns the device index.
func (c Context) Index() int {
	return c.index
}

// Reserve claims n bytes on the device.
func (c Context) Reserve(n uint64) error {
	if c.alloc == nil {
		return ErrNoDevice
	}
	return c.alloc.Reserve(n)
}

// Release returns n bytes to the device.
func (c Context) Release(n uint64) {
	if c.alloc != nil {
		c.alloc.Release(n)
	}
}

// String returns "kind:index".
func (c Context) String() string {
	if !c.Valid() {
		return "none"
	}
	return fmt.Sprintf("%s:%d", c.kind, c.index)
}
