//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// sizeClass buckets pooled buffers by size.
type sizeClass int

const (
	classSmall  sizeClass = iota // < 4KB
	classMedium                  // 4KB-1MB
	classLarge                   // > 1MB
	numClasses
)

const (
	smallThreshold  = 4 * 1024
	mediumThreshold = 1024 * 1024
	maxPoolSize     = 100 // per class
)

type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// BufferPool recycles GPU buffers by size class and usage flags.
type BufferPool struct {
	device  *wgpu.Device
	classes [numClasses][]*pooledBuffer
	mu      sync.Mutex

	allocated uint64
	released  uint64
	hits      uint64
	misses    uint64
}

// NewBufferPool creates a pool for device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	p := &BufferPool{device: device}
	for i := range p.classes {
		p.classes[i] = make([]*pooledBuffer, 0, maxPoolSize)
	}
	return p
}

// Acquire returns a pooled buffer of at least size bytes carrying every
// flag in usage, creating one when none fits.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := classOf(size)
	for i, pb := range p.classes[c] {
		if pb.size >= size && pb.usage&usage == usage {
			p.classes[c] = append(p.classes[c][:i], p.classes[c][i+1:]...)
			p.hits++
			return pb.buffer
		}
	}

	p.misses++
	p.allocated++
	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Release returns buffer to the pool, or frees it when its class is full.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.released++
	c := classOf(size)
	if len(p.classes[c]) >= maxPoolSize {
		buffer.Release()
		return
	}
	p.classes[c] = append(p.classes[c], &pooledBuffer{buffer: buffer, size: size, usage: usage})
}

// Clear frees every pooled buffer.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for c := range p.classes {
		for _, pb := range p.classes[c] {
			pb.buffer.Release()
		}
		p.classes[c] = p.classes[c][:0]
	}
}

// Stats returns pool counters and the number of buffers currently pooled.
func (p *BufferPool) Stats() (allocated, released, hits, misses uint64, pooled int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, bufs := range p.classes {
		pooled += len(bufs)
	}
	return p.allocated, p.released, p.hits, p.misses, pooled
}

func classOf(size uint64) sizeClass {
	switch {
	case size < smallThreshold:
		return classSmall
	case size < mediumThreshold:
		return classMedium
	default:
		return classLarge
	}
}
