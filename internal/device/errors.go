package device

import (
	"errors"
	"fmt"
)

// Sentinel errors for device management.
//
// Use errors.Is to test for these; the concrete errors returned by the
// Manager and the platforms wrap them with the failing index and cause.
var (
	// ErrInvalidDevice is returned when a device index is outside [0, count).
	ErrInvalidDevice = errors.New("device: invalid device index")

	// ErrDeviceQuery is returned when the platform cannot be queried
	// (driver missing, no compatible hardware, failed memory query).
	ErrDeviceQuery = errors.New("device: query failed")

	// ErrNoDevice is returned when memory is requested through a Context
	// that was not produced by a successful device selection.
	ErrNoDevice = errors.New("device: no device selected")

	// ErrOutOfMemory is returned when a reservation exceeds the remaining budget.
	ErrOutOfMemory = errors.New("device: out of memory")
)

// InvalidDeviceError reports an out-of-range device index.
type InvalidDeviceError struct {
	Index int
	Count int
}

func (e *InvalidDeviceError) Error() string {
	return fmt.Sprintf("device: invalid device index %d (have %d devices)", e.Index, e.Count)
}

// Is reports whether target is ErrInvalidDevice.
func (e *InvalidDeviceError) Is(target error) bool {
	return target == ErrInvalidDevice
}

// QueryError reports a platform-level failure while enumerating devices
// or reading memory counters.
type QueryError struct {
	Platform string
	Op       string
	Index    int // -1 when the operation is not device specific
	Err      error
}

func (e *QueryError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("device: %s: %s failed: %v", e.Platform, e.Op, e.Err)
	}
	return fmt.Sprintf("device: %s: %s(%d) failed: %v", e.Platform, e.Op, e.Index, e.Err)
}

// Unwrap returns the underlying platform error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDeviceQuery.
func (e *QueryError) Is(target error) bool {
	return target == ErrDeviceQuery
}

// OutOfMemoryError reports a reservation that did not fit in a budget.
type OutOfMemoryError struct {
	Requested uint64
	Free      uint64
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("device: out of memory: requested %d bytes, %d free", e.Requested, e.Free)
}

// Is reports whether target is ErrOutOfMemory.
func (e *OutOfMemoryError) Is(target error) bool {
	return target == ErrOutOfMemory
}
