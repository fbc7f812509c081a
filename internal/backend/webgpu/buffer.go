//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-webgpu/webgpu/wgpu"
)

const storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// Buffer is a float32 array resident on the device.
type Buffer struct {
	backend *Backend
	buffer  *wgpu.Buffer
	size    uint64
	n       int
}

// Upload copies data to a new device buffer, reserving its size in the
// backend's memory budget.
func (b *Backend) Upload(data []float32) (*Buffer, error) {
	// WebGPU rejects zero-sized bindings.
	size := uint64(max(len(data), 1)) * 4
	if err := b.trackBufferAllocation(size); err != nil {
		return nil, fmt.Errorf("webgpu: upload %d elements: %w", len(data), err)
	}

	raw := make([]byte, size)
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return &Buffer{
		backend: b,
		buffer:  b.createBuffer(raw, storageUsage),
		size:    size,
		n:       len(data),
	}, nil
}

// Len returns the number of elements.
func (buf *Buffer) Len() int {
	return buf.n
}

// Download copies the buffer back to host memory.
func (buf *Buffer) Download() ([]float32, error) {
	raw, err := buf.backend.readBuffer(buf.buffer, buf.size)
	if err != nil {
		return nil, err
	}
	out := make([]float32, buf.n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

// Release frees the device buffer and returns its bytes to the budget.
// Releasing twice is a no-op.
func (buf *Buffer) Release() {
	if buf.buffer == nil {
		return
	}
	buf.buffer.Release()
	buf.buffer = nil
	buf.backend.trackBufferRelease(buf.size)
}
