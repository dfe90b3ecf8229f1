//go:build windows

package device

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// Verify that WebGPUDriver implements Driver.
var _ Driver = (*WebGPUDriver)(nil)

// WebGPUDriver backs the recorded allocator with WebGPU storage buffers.
// WebGPU exposes a single logical device per adapter, so the driver always
// reports one device. Buffer handles are synthesized addresses; the real
// wgpu.Buffer is kept in a side table until freed.
type WebGPUDriver struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device

	mu      sync.Mutex
	buffers map[uintptr]wgpuAlloc
	nextPtr uintptr
	used    uint64
	total   uint64
	lastErr Status
}

// wgpuAlloc pairs a live buffer with its size so Free can give the bytes
// back to the usage counter.
type wgpuAlloc struct {
	buf  *wgpu.Buffer
	size uint64
}

// NewWebGPUDriver initializes WebGPU and returns a driver over the
// high-performance adapter.
func NewWebGPUDriver() (drv *WebGPUDriver, err error) {
	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			drv = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	limits := device.GetLimits()

	return &WebGPUDriver{
		instance: instance,
		adapter:  adapter,
		device:   device,
		buffers:  make(map[uintptr]wgpuAlloc),
		nextPtr:  0x1000,
		total:    uint64(limits.Limits.MaxBufferSize),
	}, nil
}

// DeviceCount implements Driver.
func (d *WebGPUDriver) DeviceCount() int {
	return 1
}

// SetDevice implements Driver. WebGPU has a single device context, so this
// only validates the id.
func (d *WebGPUDriver) SetDevice(id int) (int, Status) {
	if id != 0 {
		d.mu.Lock()
		d.lastErr = StatusInvalidValue
		d.mu.Unlock()
		return 0, StatusInvalidValue
	}
	return 0, StatusSuccess
}

// CurrentDevice implements Driver.
func (d *WebGPUDriver) CurrentDevice() int {
	return 0
}

// Alloc implements Driver. Managed memory has no WebGPU equivalent; the
// flag is ignored and a host-visible storage buffer is created either way.
func (d *WebGPUDriver) Alloc(size uint64, _ bool) (ptr uintptr, st Status) {
	defer func() {
		if r := recover(); r != nil {
			d.mu.Lock()
			d.lastErr = StatusOutOfMemory
			d.mu.Unlock()
			ptr, st = 0, StatusOutOfMemory
		}
	}()

	buffer := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	if buffer == nil {
		d.mu.Lock()
		d.lastErr = StatusOutOfMemory
		d.mu.Unlock()
		return 0, StatusOutOfMemory
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ptr = d.nextPtr
	d.nextPtr += uintptr(size)
	d.buffers[ptr] = wgpuAlloc{buf: buffer, size: size}
	d.used += size
	return ptr, StatusSuccess
}

// Free implements Driver.
func (d *WebGPUDriver) Free(ptr uintptr) Status {
	d.mu.Lock()
	alloc, ok := d.buffers[ptr]
	if !ok {
		d.lastErr = StatusInvalidValue
		d.mu.Unlock()
		return StatusInvalidValue
	}
	delete(d.buffers, ptr)
	d.used -= alloc.size
	d.mu.Unlock()

	alloc.buf.Release()
	return StatusSuccess
}

// MemInfo implements Driver. WebGPU does not report live device memory, so
// availability is derived from the adapter's buffer limit minus the bytes
// handed out by this driver.
func (d *WebGPUDriver) MemInfo() (uint64, uint64, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.used > d.total {
		return 0, d.total, StatusSuccess
	}
	return d.total - d.used, d.total, StatusSuccess
}

// Properties implements Driver.
func (d *WebGPUDriver) Properties(id int) (DeviceProperties, Status) {
	if id != 0 {
		return DeviceProperties{}, StatusInvalidValue
	}

	info := d.adapter.GetInfo()
	return DeviceProperties{
		Name:        info.Description,
		TotalMemory: d.total,
	}, StatusSuccess
}

// LastError implements Driver.
func (d *WebGPUDriver) LastError() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	last := d.lastErr
	d.lastErr = StatusSuccess
	return last
}

// Release frees every outstanding buffer and the WebGPU device objects.
func (d *WebGPUDriver) Release() {
	d.mu.Lock()
	buffers := d.buffers
	d.buffers = make(map[uintptr]wgpuAlloc)
	d.used = 0
	d.mu.Unlock()

	for _, a := range buffers {
		a.buf.Release()
	}
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
}
