package tensor

import (
	"fmt"

	"github.com/born-ml/rprop/internal/device"
)

// Array is an owned, contiguous sequence of elements allocated against a
// device context. Its bytes are reserved in the device's memory budget on
// creation and returned by Free.
//
// The update kernels mutate Arrays in place and never allocate or free them.
type Array[T Float] struct {
	ctx   device.Context
	data  []T
	shape Shape
	freed bool
}

// New allocates a zero-filled array of the given shape on ctx.
//
// It fails with device.ErrNoDevice if ctx did not come from a device
// selection and with device.ErrOutOfMemory if the device budget is exhausted.
func New[T Float](ctx device.Context, shape Shape) (*Array[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	n := shape.NumElements()
	//nolint:gosec // G115: element count and size are non-negative
	if err := ctx.Reserve(uint64(n * DataTypeOf[T]().Size())); err != nil {
		return nil, fmt.Errorf("tensor: allocate %v on %s: %w", shape, ctx, err)
	}

	return &Array[T]{
		ctx:   ctx,
		data:  make([]T, n),
		shape: shape.Clone(),
	}, nil
}

// Zeros is an alias for New.
func Zeros[T Float](ctx device.Context, shape Shape) (*Array[T], error) {
	return New[T](ctx, shape)
}

// Full allocates an array with every element set to value.
func Full[T Float](ctx device.Context, shape Shape, value T) (*Array[T], error) {
	a, err := New[T](ctx, shape)
	if err != nil {
		return nil, err
	}
	for i := range a.data {
		a.data[i] = value
	}
	return a, nil
}

// FromSlice allocates an array of the given shape and copies values into it.
func FromSlice[T Float](ctx device.Context, values []T, shape Shape) (*Array[T], error) {
	if shape.NumElements() != len(values) {
		return nil, fmt.Errorf("tensor: %d values do not fill shape %v", len(values), shape)
	}
	a, err := New[T](ctx, shape)
	if err != nil {
		return nil, err
	}
	copy(a.data, values)
	return a, nil
}

// Len returns the number of elements.
func (a *Array[T]) Len() int { return len(a.data) }

// At returns element i.
func (a *Array[T]) At(i int) T { return a.data[i] }

// Set stores v at index i.
func (a *Array[T]) Set(i int, v T) { a.data[i] = v }

// Data returns the backing slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (a *Array[T]) Data() []T { return a.data }

// Shape returns the array's shape.
func (a *Array[T]) Shape() Shape { return a.shape }

// DType returns the element type.
func (a *Array[T]) DType() DataType { return DataTypeOf[T]() }

// Context returns the device context the array was allocated on.
func (a *Array[T]) Context() device.Context { return a.ctx }

// ByteSize returns the storage size in bytes.
func (a *Array[T]) ByteSize() int { return len(a.data) * a.DType().Size() }

// Reshape returns a view sharing storage with a new shape of equal size.
// The view keeps the device context but does not own the storage; only the
// original may be freed.
func (a *Array[T]) Reshape(shape Shape) (*Array[T], error) {
	if shape.NumElements() != len(a.data) {
		return nil, fmt.Errorf("tensor: cannot reshape %v to %v", a.shape, shape)
	}
	return &Array[T]{ctx: a.ctx, data: a.data, shape: shape.Clone(), freed: true}, nil
}

// Clone allocates a copy on the same device.
func (a *Array[T]) Clone() (*Array[T], error) {
	return FromSlice(a.ctx, a.data, a.shape)
}

// Free returns the array's bytes to its device. Calling Free more than
// once is a no-op.
func (a *Array[T]) Free() {
	if a.freed {
		return
	}
	a.freed = true
	//nolint:gosec // G115: ByteSize is non-negative
	a.ctx.Release(uint64(a.ByteSize()))
}
