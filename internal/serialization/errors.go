package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrMissingArray       = errors.New("array not found")
)

// ValidationError reports a malformed array table.
type ValidationError struct {
	Type    string // "out_of_bounds", "offset_overlap", ...
	Array   string
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Array != "" {
		return fmt.Sprintf("%s: array %q: %s", e.Type, e.Array, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}
