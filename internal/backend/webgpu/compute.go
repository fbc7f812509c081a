//go:build windows

package webgpu

import (
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// maxWorkgroups is the per-dimension dispatch limit guaranteed by WebGPU.
const maxWorkgroups = 65535

// compileShader compiles WGSL code once per name.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, ok := b.shaders[name]; ok {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()
	return shader
}

// getOrCreatePipeline returns the cached pipeline for name.
func (b *Backend) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, ok := b.pipelines[name]; ok {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	// Auto layout from the shader's bindings.
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()
	return pipeline
}

// createBuffer creates a GPU buffer initialised with data.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mapped := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice over the mapped range
	copy(unsafe.Slice((*byte)(mapped), size), data)
	buffer.Unmap()
	return buffer
}

// createUniformBuffer creates a uniform buffer padded to 16 bytes.
func (b *Backend) createUniformBuffer(data []byte) *wgpu.Buffer {
	size := (uint64(len(data)) + 15) &^ 15

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mapped := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice over the mapped range
	copy(unsafe.Slice((*byte)(mapped), size), data)
	buffer.Unmap()
	return buffer
}

// readBuffer copies size bytes of src back to host memory through a
// pooled staging buffer.
func (b *Backend) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	usage := wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
	staging := b.bufferPool.Acquire(size, usage)
	defer b.bufferPool.Release(staging, size, usage)

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("webgpu: map staging buffer: %w", err)
	}
	mapped := staging.GetMappedRange(0, size)
	result := make([]byte, size)
	//nolint:gosec // unsafe.Slice over the mapped range
	copy(result, unsafe.Slice((*byte)(mapped), size))
	staging.Unmap()
	return result, nil
}

// dispatch runs the named shader over n elements. Bindings 0..len(bufs)-1
// are the storage buffers in order; the params uniform follows them.
func (b *Backend) dispatch(name, code string, n int, params []byte, bufs ...*Buffer) error {
	if n == 0 {
		return nil
	}
	workgroups := (n + workgroupSize - 1) / workgroupSize
	if workgroups > maxWorkgroups {
		return fmt.Errorf("webgpu: %s: %d elements exceed the dispatch limit", name, n)
	}

	shader := b.compileShader(name, code)
	pipeline := b.getOrCreatePipeline(name, shader)

	uniform := b.createUniformBuffer(params)
	defer uniform.Release()

	entries := make([]wgpu.BindGroupEntry, 0, len(bufs)+1)
	for i, buf := range bufs {
		//nolint:gosec // G115: binding indices are small
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), buf.buffer, 0, buf.size))
	}
	//nolint:gosec // G115: binding indices are small
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(bufs)), uniform, 0, (uint64(len(params))+15)&^15))

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	//nolint:gosec // G115: bounded by maxWorkgroups
	pass.DispatchWorkgroups(uint32(workgroups), 1, 1)
	pass.End()

	b.queue.Submit(encoder.Finish(nil))
	return nil
}
