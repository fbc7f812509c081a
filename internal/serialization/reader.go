package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/born-ml/rprop/internal/device"
	"github.com/born-ml/rprop/internal/tensor"
)

// Checkpoint is a loaded checkpoint. Its arrays are allocated on the
// context passed to Read; Free returns them.
type Checkpoint[T tensor.Float] struct {
	Header Header
	Arrays map[string]*tensor.Array[T]
}

// Array returns the named array or ErrMissingArray.
func (c *Checkpoint[T]) Array(name string) (*tensor.Array[T], error) {
	a, ok := c.Arrays[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingArray, name)
	}
	return a, nil
}

// Free releases every array.
func (c *Checkpoint[T]) Free() {
	for _, a := range c.Arrays {
		a.Free()
	}
}

// Read loads the checkpoint at path onto ctx. The stored element type must
// be T's.
func Read[T tensor.Float](path string, ctx device.Context) (*Checkpoint[T], error) {
	//nolint:gosec // G304: checkpoint path comes from configuration
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}

	header, data, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", path, err)
	}

	want := tensor.DataTypeOf[T]().String()
	for _, am := range header.Arrays {
		if am.DType != want {
			return nil, fmt.Errorf("read checkpoint %s: array %q is %s, want %s", path, am.Name, am.DType, want)
		}
	}

	cp := &Checkpoint[T]{Header: header, Arrays: make(map[string]*tensor.Array[T], len(header.Arrays))}
	for _, am := range header.Arrays {
		a, err := tensor.New[T](ctx, tensor.Shape(am.Shape))
		if err != nil {
			cp.Free()
			return nil, fmt.Errorf("read checkpoint %s: %w", path, err)
		}
		decodeElems(a.Data(), data[am.Offset:am.Offset+am.Size])
		cp.Arrays[am.Name] = a
	}
	return cp, nil
}

// parse validates the fixed header, checksum and array table.
func parse(raw []byte) (Header, []byte, error) {
	var header Header
	if len(raw) < FixedHeaderSize {
		return header, nil, fmt.Errorf("file too short: %d bytes", len(raw))
	}
	if !bytes.Equal(raw[:4], []byte(MagicBytes)) {
		return header, nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint32(raw[0x04:]); v != FormatVersion {
		return header, nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, v, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(raw[0x10:])
	dataSize := binary.LittleEndian.Uint64(raw[0x18:])
	if headerSize > MaxHeaderSize {
		return header, nil, ErrHeaderTooLarge
	}

	//nolint:gosec // G115: bounded by MaxHeaderSize
	hdrEnd := int64(FixedHeaderSize) + int64(headerSize)
	dataStart := hdrEnd + padding(hdrEnd)
	if dataStart > int64(len(raw)) || uint64(int64(len(raw))-dataStart) != dataSize {
		return header, nil, fmt.Errorf("data section is %d bytes, header says %d", int64(len(raw))-dataStart, dataSize)
	}
	data := raw[dataStart:]

	var stored [ChecksumSize]byte
	copy(stored[:], raw[ChecksumOffset:ChecksumOffset+ChecksumSize])
	if sha256.Sum256(data) != stored {
		return header, nil, ErrChecksumMismatch
	}

	if err := json.Unmarshal(raw[FixedHeaderSize:hdrEnd], &header); err != nil {
		return header, nil, fmt.Errorf("parse header JSON: %w", err)
	}
	if err := validateArrays(header.Arrays, int64(len(data))); err != nil {
		return header, nil, err
	}
	return header, data, nil
}

func decodeElems[T tensor.Float](dst []T, src []byte) {
	if tensor.DataTypeOf[T]() == tensor.Float32 {
		for i := range dst {
			dst[i] = T(math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:])))
		}
		return
	}
	for i := range dst {
		dst[i] = T(math.Float64frombits(binary.LittleEndian.Uint64(src[i*8:])))
	}
}
