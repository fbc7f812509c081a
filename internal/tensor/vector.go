package tensor

import "fmt"

// Vector is the flat element-access capability the update kernels work on.
//
// Implementations must allow concurrent Set calls on distinct indices.
type Vector[T Float] interface {
	Len() int
	At(i int) T
	Set(i int, v T)
}

// Contiguous is a Vector backed by one dense slice. Kernels use Data to
// avoid per-element interface dispatch.
type Contiguous[T Float] interface {
	Vector[T]
	Data() []T
}

// Slice adapts a plain Go slice to Vector. It is not device-accounted;
// use Array for storage allocated against a device.
type Slice[T Float] []T

// Len returns the number of elements.
func (s Slice[T]) Len() int { return len(s) }

// At returns element i.
func (s Slice[T]) At(i int) T { return s[i] }

// Set stores v at index i.
func (s Slice[T]) Set(i int, v T) { s[i] = v }

// Data returns the slice itself.
func (s Slice[T]) Data() []T { return s }

// Strided is a regular-strided view: element i lives at data[offset+i*stride].
type Strided[T Float] struct {
	data   []T
	offset int
	stride int
	n      int
}

// NewStrided creates a strided view of n elements over data.
func NewStrided[T Float](data []T, offset, stride, n int) (*Strided[T], error) {
	if offset < 0 || stride <= 0 || n < 0 {
		return nil, fmt.Errorf("tensor: invalid strided view (offset=%d, stride=%d, n=%d)", offset, stride, n)
	}
	if n > 0 && offset+(n-1)*stride >= len(data) {
		return nil, fmt.Errorf("tensor: strided view of %d elements (offset=%d, stride=%d) exceeds buffer of %d",
			n, offset, stride, len(data))
	}
	return &Strided[T]{data: data, offset: offset, stride: stride, n: n}, nil
}

// Len returns the number of elements.
func (s *Strided[T]) Len() int { return s.n }

// At returns element i.
func (s *Strided[T]) At(i int) T { return s.data[s.offset+i*s.stride] }

// Set stores v at index i.
func (s *Strided[T]) Set(i int, v T) { s.data[s.offset+i*s.stride] = v }

// pitched exposes a row-major matrix with leading dimension ld >= cols
// as a flat sequence of rows*cols elements.
type pitched[T Float] struct {
	data       []T
	rows, cols int
	ld         int
}

func (p *pitched[T]) Len() int { return p.rows * p.cols }

func (p *pitched[T]) At(i int) T { return p.data[(i/p.cols)*p.ld+i%p.cols] }

func (p *pitched[T]) Set(i int, v T) { p.data[(i/p.cols)*p.ld+i%p.cols] = v }

// CopyTo copies src into dst element by element. Lengths must match.
func CopyTo[T Float](dst, src Vector[T]) error {
	if dst.Len() != src.Len() {
		return fmt.Errorf("tensor: copy length mismatch: %d vs %d", dst.Len(), src.Len())
	}
	if d, ok := dst.(Contiguous[T]); ok {
		if s, ok := src.(Contiguous[T]); ok {
			copy(d.Data(), s.Data())
			return nil
		}
	}
	for i := range src.Len() {
		dst.Set(i, src.At(i))
	}
	return nil
}

// ToSlice copies v into a new slice.
func ToSlice[T Float](v Vector[T]) []T {
	out := make([]T, v.Len())
	for i := range out {
		out[i] = v.At(i)
	}
	return out
}
