//go:build linux

package cuda

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

// cuResult is a CUDA driver API status code.
type cuResult int32

const (
	cudaSuccess          cuResult = 0
	cudaErrorInvalidVal  cuResult = 1
	cudaErrorOutOfMemory cuResult = 2
	cudaErrorNotInit     cuResult = 3
	cudaErrorNoDevice    cuResult = 100
	cudaErrorInvalidDev  cuResult = 101
	cudaErrorInvalidCtx  cuResult = 201
)

func (r cuResult) Error() string {
	names := map[cuResult]string{
		cudaErrorInvalidVal:  "INVALID_VALUE",
		cudaErrorOutOfMemory: "OUT_OF_MEMORY",
		cudaErrorNotInit:     "NOT_INITIALIZED",
		cudaErrorNoDevice:    "NO_DEVICE",
		cudaErrorInvalidDev:  "INVALID_DEVICE",
		cudaErrorInvalidCtx:  "INVALID_CONTEXT",
	}
	if name, ok := names[r]; ok {
		return fmt.Sprintf("CUDA_ERROR_%s (%d)", name, int32(r))
	}
	return fmt.Sprintf("CUDA_ERROR(%d)", int32(r))
}

func check(r cuResult, op string) error {
	if r != cudaSuccess {
		return fmt.Errorf("%s: %w", op, r)
	}
	return nil
}

// libDriver binds the handful of driver entry points needed for device
// enumeration and memory queries.
type libDriver struct {
	cuInit                   func(flags uint32) cuResult
	cuDeviceGetCount         func(count *int32) cuResult
	cuDeviceGet              func(dev *int32, ordinal int32) cuResult
	cuDeviceTotalMem         func(bytes *uint64, dev int32) cuResult
	cuMemGetInfo             func(free, total *uint64) cuResult
	cuDevicePrimaryCtxRetain func(pctx *uintptr, dev int32) cuResult
	cuCtxSetCurrent          func(ctx uintptr) cuResult
	cuCtxPushCurrent         func(ctx uintptr) cuResult
	cuCtxPopCurrent          func(pctx *uintptr) cuResult

	mu   sync.Mutex
	ctxs map[int]uintptr
}

var (
	loadOnce sync.Once
	loaded   *libDriver
	loadErr  error
)

// loadDriver opens libcuda once per process.
func loadDriver() (driver, error) {
	loadOnce.Do(func() {
		lib, err := purego.Dlopen("libcuda.so.1", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err != nil {
			lib, err = purego.Dlopen("libcuda.so", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
			if err != nil {
				loadErr = fmt.Errorf("load libcuda: %w", err)
				return
			}
		}

		d := &libDriver{ctxs: make(map[int]uintptr)}
		purego.RegisterLibFunc(&d.cuInit, lib, "cuInit")
		purego.RegisterLibFunc(&d.cuDeviceGetCount, lib, "cuDeviceGetCount")
		purego.RegisterLibFunc(&d.cuDeviceGet, lib, "cuDeviceGet")
		purego.RegisterLibFunc(&d.cuDeviceTotalMem, lib, "cuDeviceTotalMem_v2")
		purego.RegisterLibFunc(&d.cuMemGetInfo, lib, "cuMemGetInfo_v2")
		purego.RegisterLibFunc(&d.cuDevicePrimaryCtxRetain, lib, "cuDevicePrimaryCtxRetain")
		purego.RegisterLibFunc(&d.cuCtxSetCurrent, lib, "cuCtxSetCurrent")
		purego.RegisterLibFunc(&d.cuCtxPushCurrent, lib, "cuCtxPushCurrent_v2")
		purego.RegisterLibFunc(&d.cuCtxPopCurrent, lib, "cuCtxPopCurrent_v2")

		if err := check(d.cuInit(0), "cuInit"); err != nil {
			loadErr = err
			return
		}
		loaded = d
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return loaded, nil
}

func (d *libDriver) deviceCount() (int, error) {
	var n int32
	r := d.cuDeviceGetCount(&n)
	if r == cudaErrorNoDevice {
		return 0, nil
	}
	if err := check(r, "cuDeviceGetCount"); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (d *libDriver) device(index int) (int32, error) {
	var dev int32
	if err := check(d.cuDeviceGet(&dev, int32(index)), "cuDeviceGet"); err != nil {
		return 0, err
	}
	return dev, nil
}

func (d *libDriver) totalMem(index int) (uint64, error) {
	dev, err := d.device(index)
	if err != nil {
		return 0, err
	}
	var total uint64
	if err := check(d.cuDeviceTotalMem(&total, dev), "cuDeviceTotalMem"); err != nil {
		return 0, err
	}
	return total, nil
}

// memInfo pushes the primary context of index on a locked OS thread,
// since cuMemGetInfo reports for the calling thread's context, and pops it
// again so the thread's previous binding survives.
func (d *libDriver) memInfo(index int) (free, total uint64, err error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx, err := d.primaryContext(index)
	if err != nil {
		return 0, 0, err
	}
	if err := check(d.cuCtxPushCurrent(ctx), "cuCtxPushCurrent"); err != nil {
		return 0, 0, err
	}
	defer func() {
		var popped uintptr
		if perr := check(d.cuCtxPopCurrent(&popped), "cuCtxPopCurrent"); perr != nil && err == nil {
			free, total, err = 0, 0, perr
		}
	}()

	if err := check(d.cuMemGetInfo(&free, &total), "cuMemGetInfo"); err != nil {
		return 0, 0, err
	}
	return free, total, nil
}

// bind makes the primary context of index current on whichever OS thread
// runs the call. It does not pin that thread; code that launches work must
// lock its own thread and bind again.
func (d *libDriver) bind(index int) error {
	return d.setCurrent(index)
}

func (d *libDriver) setCurrent(index int) error {
	ctx, err := d.primaryContext(index)
	if err != nil {
		return err
	}
	return check(d.cuCtxSetCurrent(ctx), "cuCtxSetCurrent")
}

// primaryContext retains the primary context of index once and caches it.
func (d *libDriver) primaryContext(index int) (uintptr, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ctx, ok := d.ctxs[index]; ok {
		return ctx, nil
	}
	dev, err := d.device(index)
	if err != nil {
		return 0, err
	}
	var ctx uintptr
	if err := check(d.cuDevicePrimaryCtxRetain(&ctx, dev), "cuDevicePrimaryCtxRetain"); err != nil {
		return 0, err
	}
	d.ctxs[index] = ctx
	return ctx, nil
}
