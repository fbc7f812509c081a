//go:build windows

// Package webgpu runs the weight-update kernels on a GPU through WebGPU.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO bindings.
//
// WebGPU exposes no memory query, so device memory is accounted against a
// configured budget: every Buffer reserves its size on upload and returns it
// on Release.
package webgpu

import (
	"cmp"
	"errors"
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/rprop/internal/device"
)

// Open failures. ErrNoLibrary means wgpu_native could not be loaded;
// ErrNoAdapter means it loaded but found no compatible adapter.
var (
	ErrNoLibrary = errors.New("webgpu: native library not available")
	ErrNoAdapter = errors.New("webgpu: no compatible adapter")
)

// DefaultMemory is the device budget used when none is configured.
const DefaultMemory = 2 << 30 // 2 GiB

// Backend owns one WebGPU device and its compiled update pipelines.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// compiled per kernel name
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	adapterInfo *wgpu.AdapterInfo

	// Staging buffers for readback are recycled through the pool.
	bufferPool *BufferPool

	budget        *device.Budget
	activeBuffers int64
	statsMu       sync.Mutex
}

// New creates a backend on the high-performance adapter with a memory
// budget of memory bytes (zero selects DefaultMemory). It fails when the
// native library is missing or no adapter can be opened.
func New(memory uint64) (backend *Backend, err error) {
	// wgpu panics when wgpu_native cannot be loaded.
	defer func() {
		if r := recover(); r != nil {
			backend, err = nil, fmt.Errorf("%w: %v", ErrNoLibrary, r)
		}
	}()

	b := &Backend{
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		budget:    device.NewBudget(cmp.Or(memory, DefaultMemory)),
	}
	if err := b.open(); err != nil {
		b.Release()
		return nil, err
	}
	b.bufferPool = NewBufferPool(b.device)
	return b, nil
}

func (b *Backend) open() error {
	var err error
	b.instance = wgpu.CreateInstance(nil)
	b.adapter, err = b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoAdapter, err)
	}
	info := b.adapter.GetInfo()
	b.adapterInfo = &info

	if b.device, err = b.adapter.RequestDevice(nil); err != nil {
		return fmt.Errorf("webgpu: request device: %w", err)
	}
	if b.queue = b.device.GetQueue(); b.queue == nil {
		return fmt.Errorf("webgpu: device has no queue")
	}
	return nil
}

// Release frees the pipelines, the staging pool and the device. Buffers
// still held by the caller must be released first. Safe on a partially
// opened backend.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bufferPool != nil {
		b.bufferPool.Clear()
		b.bufferPool = nil
	}
	for _, p := range b.pipelines {
		p.Release()
	}
	for _, s := range b.shaders {
		s.Release()
	}
	clear(b.pipelines)
	clear(b.shaders)

	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
	b.queue, b.device, b.adapter, b.instance = nil, nil, nil, nil
}

// Name describes the adapter.
func (b *Backend) Name() string {
	if b.adapterInfo != nil {
		return fmt.Sprintf("WebGPU (%s %s)", b.adapterInfo.Device, b.adapterInfo.Vendor)
	}
	return "WebGPU"
}

// AdapterInfo returns information about the GPU adapter.
func (b *Backend) AdapterInfo() *wgpu.AdapterInfo {
	return b.adapterInfo
}

// Budget returns the device memory budget.
func (b *Backend) Budget() *device.Budget {
	return b.budget
}

// IsAvailable reports whether an adapter can be opened.
func IsAvailable() (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err == nil {
		adapter.Release()
	}
	return err == nil
}

// MemoryStats reports device memory use.
type MemoryStats struct {
	UsedBytes     uint64
	PeakBytes     uint64
	BudgetBytes   uint64
	ActiveBuffers int64
	// Staging pool statistics
	PoolAllocated uint64
	PoolReleased  uint64
	PoolHits      uint64
	PoolMisses    uint64
	PooledBuffers int
}

// MemoryStats returns current device memory statistics.
func (b *Backend) MemoryStats() MemoryStats {
	b.statsMu.Lock()
	active := b.activeBuffers
	b.statsMu.Unlock()

	allocated, released, hits, misses, pooled := b.bufferPool.Stats()
	return MemoryStats{
		UsedBytes:     b.budget.Used(),
		PeakBytes:     b.budget.Peak(),
		BudgetBytes:   b.budget.Total(),
		ActiveBuffers: active,
		PoolAllocated: allocated,
		PoolReleased:  released,
		PoolHits:      hits,
		PoolMisses:    misses,
		PooledBuffers: pooled,
	}
}

// trackBufferAllocation reserves size bytes for a new device buffer.
func (b *Backend) trackBufferAllocation(size uint64) error {
	if err := b.budget.Reserve(size); err != nil {
		return err
	}
	b.statsMu.Lock()
	b.activeBuffers++
	b.statsMu.Unlock()
	return nil
}

// trackBufferRelease returns size bytes of a released device buffer.
func (b *Backend) trackBufferRelease(size uint64) {
	b.budget.Release(size)
	b.statsMu.Lock()
	b.activeBuffers--
	b.statsMu.Unlock()
}
