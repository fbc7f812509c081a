package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/rprop/internal/device"
)

// Matrix is a flat vector with a (rows, cols) annotation. The update
// kernels only use Vec; Dims is used for shape-conformance checks.
type Matrix[T Float] interface {
	Dims() (rows, cols int)
	Vec() Vector[T]
}

// Mat is a row-major matrix over a Vector of rows*cols elements.
type Mat[T Float] struct {
	rows, cols int
	vec        Vector[T]
}

// NewMat annotates vec with a (rows, cols) shape.
func NewMat[T Float](rows, cols int, vec Vector[T]) (*Mat[T], error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("tensor: invalid matrix dims %dx%d", rows, cols)
	}
	if vec.Len() != rows*cols {
		return nil, fmt.Errorf("tensor: %dx%d matrix needs %d elements, vector has %d",
			rows, cols, rows*cols, vec.Len())
	}
	return &Mat[T]{rows: rows, cols: cols, vec: vec}, nil
}

// NewMatrix allocates a zero-filled rows x cols matrix on ctx.
func NewMatrix[T Float](ctx device.Context, rows, cols int) (*Mat[T], error) {
	a, err := New[T](ctx, Shape{rows, cols})
	if err != nil {
		return nil, err
	}
	return &Mat[T]{rows: rows, cols: cols, vec: a}, nil
}

// NewPitched views data as a rows x cols row-major matrix whose rows start
// ld elements apart (ld >= cols).
func NewPitched[T Float](data []T, rows, cols, ld int) (*Mat[T], error) {
	if rows <= 0 || cols <= 0 || ld < cols {
		return nil, fmt.Errorf("tensor: invalid pitched matrix %dx%d (ld=%d)", rows, cols, ld)
	}
	if (rows-1)*ld+cols > len(data) {
		return nil, fmt.Errorf("tensor: pitched matrix %dx%d (ld=%d) exceeds buffer of %d",
			rows, cols, ld, len(data))
	}
	if ld == cols {
		return &Mat[T]{rows: rows, cols: cols, vec: Slice[T](data[:rows*cols])}, nil
	}
	return &Mat[T]{rows: rows, cols: cols, vec: &pitched[T]{data: data, rows: rows, cols: cols, ld: ld}}, nil
}

// Dims returns the matrix shape.
func (m *Mat[T]) Dims() (rows, cols int) { return m.rows, m.cols }

// Vec returns the flat row-major element view.
func (m *Mat[T]) Vec() Vector[T] { return m.vec }

// Gonum adapts a gonum dense matrix. The returned Matrix shares storage
// with d, honouring its row stride.
func Gonum(d *mat.Dense) Matrix[float64] {
	raw := d.RawMatrix()
	if raw.Stride == raw.Cols {
		return &Mat[float64]{rows: raw.Rows, cols: raw.Cols, vec: Slice[float64](raw.Data[:raw.Rows*raw.Cols])}
	}
	return &Mat[float64]{
		rows: raw.Rows,
		cols: raw.Cols,
		vec:  &pitched[float64]{data: raw.Data, rows: raw.Rows, cols: raw.Cols, ld: raw.Stride},
	}
}
