package optim

import "github.com/born-ml/rprop/internal/tensor"

// Decision is the per-element step-size rule RPROP picks from the signs of
// the current and previous gradient.
type Decision int8

// RPROP step-size decisions.
const (
	// Hold keeps the rate: one of the gradients is zero (first step, stalled gradient).
	Hold Decision = iota
	// Grow multiplies the rate by EtaPlus: the gradient kept its direction.
	Grow
	// Shrink multiplies the rate by EtaMinus and skips the move: the gradient flipped.
	Shrink
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Grow:
		return "grow"
	case Shrink:
		return "shrink"
	default:
		return "hold"
	}
}

// Sign returns -1, 0 or +1. Zero and NaN map to 0.
func Sign[T tensor.Float](x T) T {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Decide maps the gradient signs of two consecutive steps to a Decision.
func Decide[T tensor.Float](grad, prev T) Decision {
	s := Sign(grad) * Sign(prev)
	switch {
	case s > 0:
		return Grow
	case s < 0:
		return Shrink
	default:
		return Hold
	}
}
