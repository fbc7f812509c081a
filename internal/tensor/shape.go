package tensor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Shape lists the extent of each dimension. The empty shape is a scalar.
type Shape []int

// NumElements returns the product of the extents.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate rejects non-positive extents.
func (s Shape) Validate() error {
	if i := slices.IndexFunc(s, func(d int) bool { return d <= 0 }); i >= 0 {
		return fmt.Errorf("dimension %d is %d, must be positive", i, s[i])
	}
	return nil
}

// Equal reports whether s and other have the same extents.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of s.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

// String formats s as "[2x3]".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, "x") + "]"
}
