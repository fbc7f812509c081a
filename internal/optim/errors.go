package optim

import (
	"fmt"
	"strings"

	"github.com/born-ml/rprop/internal/tensor"
)

// PreconditionError reports arrays of mismatched size passed to an update
// step. It is a programmer error: the kernels panic with it before touching
// any element, so every argument is left unchanged.
type PreconditionError struct {
	Op    string
	Sizes []string // "N" for vectors, "RxC" for matrices
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("optim: %s: precondition violated: operand sizes differ (%s)",
		e.Op, strings.Join(e.Sizes, ", "))
}

// CheckLengths returns a *PreconditionError unless every vector has the same length.
func CheckLengths[T tensor.Float](op string, vecs ...tensor.Vector[T]) error {
	for _, v := range vecs[1:] {
		if v.Len() != vecs[0].Len() {
			sizes := make([]string, len(vecs))
			for i, v := range vecs {
				sizes[i] = fmt.Sprintf("%d", v.Len())
			}
			return &PreconditionError{Op: op, Sizes: sizes}
		}
	}
	return nil
}

// CheckDims returns a *PreconditionError unless every matrix has the same (rows, cols).
func CheckDims[T tensor.Float](op string, mats ...tensor.Matrix[T]) error {
	r0, c0 := mats[0].Dims()
	for _, m := range mats[1:] {
		if r, c := m.Dims(); r != r0 || c != c0 {
			sizes := make([]string, len(mats))
			for i, m := range mats {
				r, c := m.Dims()
				sizes[i] = fmt.Sprintf("%dx%d", r, c)
			}
			return &PreconditionError{Op: op, Sizes: sizes}
		}
	}
	return nil
}

func mustMatch[T tensor.Float](op string, vecs ...tensor.Vector[T]) {
	if err := CheckLengths(op, vecs...); err != nil {
		panic(err)
	}
}

func mustMatchDims[T tensor.Float](op string, mats ...tensor.Matrix[T]) {
	if err := CheckDims(op, mats...); err != nil {
		panic(err)
	}
}
