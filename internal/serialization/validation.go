package serialization

import (
	"fmt"
	"sort"

	"github.com/born-ml/rprop/internal/tensor"
)

// validateArrays checks that every array lies inside the data section,
// that no two overlap, and that each size agrees with its shape and dtype.
func validateArrays(arrays []ArrayMeta, dataSize int64) error {
	if len(arrays) > MaxArrayCount {
		return &ValidationError{Type: "too_many_arrays", Details: fmt.Sprintf("got %d, max %d", len(arrays), MaxArrayCount)}
	}

	seen := make(map[string]bool, len(arrays))
	for _, a := range arrays {
		if a.Name == "" || seen[a.Name] {
			return &ValidationError{Type: "invalid_name", Array: a.Name, Details: "empty or duplicate name"}
		}
		seen[a.Name] = true

		elem, ok := elemSize(a.DType)
		if !ok {
			return &ValidationError{Type: "invalid_dtype", Array: a.Name, Details: a.DType}
		}
		shape := tensor.Shape(a.Shape)
		if err := shape.Validate(); err != nil {
			return &ValidationError{Type: "invalid_shape", Array: a.Name, Details: err.Error()}
		}
		if want := int64(shape.NumElements() * elem); a.Size != want {
			return &ValidationError{Type: "size_mismatch", Array: a.Name,
				Details: fmt.Sprintf("size %d, shape %v needs %d", a.Size, a.Shape, want)}
		}
	}

	sorted := make([]ArrayMeta, len(arrays))
	copy(sorted, arrays)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	for i, a := range sorted {
		if a.Offset < 0 || a.Size < 0 {
			return &ValidationError{Type: "negative_offset", Array: a.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", a.Offset, a.Size)}
		}
		if a.Offset+a.Size > dataSize {
			return &ValidationError{Type: "out_of_bounds", Array: a.Name,
				Details: fmt.Sprintf("offset %d + size %d > data size %d", a.Offset, a.Size, dataSize)}
		}
		if i+1 < len(sorted) && a.Offset+a.Size > sorted[i+1].Offset {
			return &ValidationError{Type: "offset_overlap", Array: a.Name,
				Details: fmt.Sprintf("overlaps %q", sorted[i+1].Name)}
		}
	}
	return nil
}

func elemSize(dtype string) (int, bool) {
	switch dtype {
	case tensor.Float32.String():
		return tensor.Float32.Size(), true
	case tensor.Float64.String():
		return tensor.Float64.Size(), true
	default:
		return 0, false
	}
}
