// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/rprop/device"
	"github.com/born-ml/rprop/internal/tensor"
)

// Float is the element constraint of every array.
type Float = tensor.Float

// DataType identifies the element type.
type DataType = tensor.DataType

// Element types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
)

// Shape is an array shape.
type Shape = tensor.Shape

// Vector is an indexable sequence of elements.
type Vector[T Float] = tensor.Vector[T]

// Slice adapts a plain slice to Vector.
type Slice[T Float] = tensor.Slice[T]

// Strided is a regular-strided view over a slice.
type Strided[T Float] = tensor.Strided[T]

// Array is device-accounted contiguous storage.
type Array[T Float] = tensor.Array[T]

// Matrix is a (rows, cols) view over a flat element vector.
type Matrix[T Float] = tensor.Matrix[T]

// Mat is the standard Matrix implementation.
type Mat[T Float] = tensor.Mat[T]

// New allocates a zero-filled array on ctx.
func New[T Float](ctx device.Context, shape Shape) (*Array[T], error) {
	return tensor.New[T](ctx, shape)
}

// Zeros allocates a zero-filled array on ctx.
func Zeros[T Float](ctx device.Context, shape Shape) (*Array[T], error) {
	return tensor.Zeros[T](ctx, shape)
}

// Full allocates an array on ctx filled with value.
func Full[T Float](ctx device.Context, shape Shape, value T) (*Array[T], error) {
	return tensor.Full(ctx, shape, value)
}

// FromSlice copies values into a new array on ctx.
func FromSlice[T Float](ctx device.Context, values []T, shape Shape) (*Array[T], error) {
	return tensor.FromSlice(ctx, values, shape)
}

// NewStrided returns the view data[offset + i*stride] for i in [0, n).
func NewStrided[T Float](data []T, offset, stride, n int) (*Strided[T], error) {
	return tensor.NewStrided(data, offset, stride, n)
}

// NewMat wraps vec as a rows x cols matrix.
func NewMat[T Float](rows, cols int, vec Vector[T]) (*Mat[T], error) {
	return tensor.NewMat(rows, cols, vec)
}

// NewMatrix allocates a zero rows x cols matrix on ctx.
func NewMatrix[T Float](ctx device.Context, rows, cols int) (*Mat[T], error) {
	return tensor.NewMatrix[T](ctx, rows, cols)
}

// NewPitched wraps row-major data whose rows start ld elements apart.
func NewPitched[T Float](data []T, rows, cols, ld int) (*Mat[T], error) {
	return tensor.NewPitched(data, rows, cols, ld)
}

// Gonum views a gonum dense matrix as a Matrix without copying.
func Gonum(d *mat.Dense) Matrix[float64] {
	return tensor.Gonum(d)
}

// CopyTo copies src into dst element by element.
func CopyTo[T Float](dst, src Vector[T]) error {
	return tensor.CopyTo(dst, src)
}

// ToSlice copies v into a new slice.
func ToSlice[T Float](v Vector[T]) []T {
	return tensor.ToSlice(v)
}
