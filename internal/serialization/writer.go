package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/born-ml/rprop/internal/tensor"
)

// Write stores arrays and meta at path. Arrays are written in name order.
// The file is written beside path and renamed into place, so a failed
// write never leaves a truncated checkpoint.
func Write[T tensor.Float](path string, meta Meta, arrays map[string]*tensor.Array[T], metadata map[string]string) error {
	names := make([]string, 0, len(arrays))
	for name := range arrays {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Checkpoint:    meta,
		Arrays:        make([]ArrayMeta, 0, len(names)),
		Metadata:      metadata,
	}

	dtype := tensor.DataTypeOf[T]()
	var data []byte
	for _, name := range names {
		a := arrays[name]
		offset := int64(len(data))
		data = appendElems(data, a.Data())
		header.Arrays = append(header.Arrays, ArrayMeta{
			Name:   name,
			DType:  dtype.String(),
			Shape:  a.Shape().Clone(),
			Offset: offset,
			Size:   int64(len(data)) - offset,
		})
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}

	var flags uint32
	if meta.Optimizer != "" {
		flags |= FlagHasOptimizer
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed, MagicBytes)
	binary.LittleEndian.PutUint32(fixed[0x04:], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[0x08:], flags)
	binary.LittleEndian.PutUint64(fixed[0x10:], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[0x18:], uint64(len(data)))
	sum := sha256.Sum256(data)
	copy(fixed[ChecksumOffset:], sum[:])

	pad := padding(int64(FixedHeaderSize + len(headerJSON)))

	buf := make([]byte, 0, FixedHeaderSize+len(headerJSON)+int(pad)+len(data))
	buf = append(buf, fixed...)
	buf = append(buf, headerJSON...)
	buf = append(buf, make([]byte, pad)...)
	buf = append(buf, data...)

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(buf); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

func appendElems[T tensor.Float](dst []byte, src []T) []byte {
	if tensor.DataTypeOf[T]() == tensor.Float32 {
		for _, v := range src {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v)))
		}
		return dst
	}
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(float64(v)))
	}
	return dst
}
