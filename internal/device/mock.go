package device

import (
	"sync"
	"sync/atomic"
)

// Verify that MockDriver implements Driver.
var _ Driver = (*MockDriver)(nil)

// MockDriver is a simple in-memory driver for testing. It hands out fake
// device addresses, tracks usage per device, counts native calls, and can
// be programmed to fail with specific status codes.
type MockDriver struct {
	mu      sync.Mutex
	devices []mockDevice
	current int
	nextPtr uintptr

	// Programmable failures. A non-success value makes the corresponding
	// native call fail with that status until reset.
	allocStatus   Status
	freeStatus    Status
	memInfoStatus Status

	lastErr Status

	// Native call counters.
	allocCalls   atomic.Int64
	freeCalls    atomic.Int64
	memInfoCalls atomic.Int64
}

type mockDevice struct {
	total uint64
	used  uint64
	live  map[uintptr]uint64
}

// NewMockDriver creates a mock driver with deviceCount devices of
// totalMem bytes each.
func NewMockDriver(deviceCount int, totalMem uint64) *MockDriver {
	devices := make([]mockDevice, deviceCount)
	for i := range devices {
		devices[i] = mockDevice{total: totalMem, live: make(map[uintptr]uint64)}
	}
	return &MockDriver{
		devices: devices,
		nextPtr: 0x1000, // keep 0 free to mean "no pointer"
	}
}

// DeviceCount implements Driver.
func (m *MockDriver) DeviceCount() int {
	return len(m.devices)
}

// SetDevice implements Driver.
func (m *MockDriver) SetDevice(id int) (int, Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 0 || id >= len(m.devices) {
		m.lastErr = StatusInvalidValue
		return m.current, StatusInvalidValue
	}
	prev := m.current
	m.current = id
	return prev, StatusSuccess
}

// CurrentDevice implements Driver.
func (m *MockDriver) CurrentDevice() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Alloc implements Driver.
func (m *MockDriver) Alloc(size uint64, _ bool) (uintptr, Status) {
	m.allocCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.allocStatus.OK() {
		m.lastErr = m.allocStatus
		return 0, m.allocStatus
	}

	dev := &m.devices[m.current]
	if dev.used+size > dev.total {
		m.lastErr = StatusOutOfMemory
		return 0, StatusOutOfMemory
	}

	ptr := m.nextPtr
	m.nextPtr += uintptr(size)
	dev.used += size
	dev.live[ptr] = size
	return ptr, StatusSuccess
}

// Free implements Driver.
func (m *MockDriver) Free(ptr uintptr) Status {
	m.freeCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.freeStatus.OK() {
		m.lastErr = m.freeStatus
		return m.freeStatus
	}

	dev := &m.devices[m.current]
	size, ok := dev.live[ptr]
	if !ok {
		m.lastErr = StatusInvalidValue
		return StatusInvalidValue
	}
	delete(dev.live, ptr)
	dev.used -= size
	return StatusSuccess
}

// MemInfo implements Driver.
func (m *MockDriver) MemInfo() (uint64, uint64, Status) {
	m.memInfoCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.memInfoStatus.OK() {
		m.lastErr = m.memInfoStatus
		return 0, 0, m.memInfoStatus
	}

	dev := &m.devices[m.current]
	return dev.total - dev.used, dev.total, StatusSuccess
}

// Properties implements Driver.
func (m *MockDriver) Properties(id int) (DeviceProperties, Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 0 || id >= len(m.devices) {
		m.lastErr = StatusInvalidValue
		return DeviceProperties{}, StatusInvalidValue
	}
	return DeviceProperties{
		Name:                        "MockDevice",
		TotalMemory:                 m.devices[id].total,
		ComputeMajor:                8,
		ComputeMinor:                0,
		DriverVersion:               12000,
		RuntimeVersion:              12000,
		MultiProcessorCount:         64,
		MaxThreadsPerBlock:          1024,
		MaxThreadsPerMultiProcessor: 2048,
		MaxGridDims:                 GridDims{X: 2147483647, Y: 65535, Z: 65535},
		ManagedMemory:               true,
	}, StatusSuccess
}

// LastError implements Driver: returns and clears the sticky error flag.
func (m *MockDriver) LastError() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	last := m.lastErr
	m.lastErr = StatusSuccess
	return last
}

// SetAllocStatus makes subsequent Alloc calls fail with the given status.
// StatusSuccess restores normal behavior.
func (m *MockDriver) SetAllocStatus(st Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocStatus = st
}

// SetFreeStatus makes subsequent Free calls fail with the given status.
func (m *MockDriver) SetFreeStatus(st Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.freeStatus = st
}

// SetMemInfoStatus makes subsequent MemInfo calls fail with the given
// status.
func (m *MockDriver) SetMemInfoStatus(st Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memInfoStatus = st
}

// AllocCalls returns how many times Alloc was invoked.
func (m *MockDriver) AllocCalls() int64 {
	return m.allocCalls.Load()
}

// FreeCalls returns how many times Free was invoked.
func (m *MockDriver) FreeCalls() int64 {
	return m.freeCalls.Load()
}

// MemInfoCalls returns how many times MemInfo was invoked.
func (m *MockDriver) MemInfoCalls() int64 {
	return m.memInfoCalls.Load()
}

// LiveAllocs returns the number of outstanding allocations on a device.
func (m *MockDriver) LiveAllocs(id int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.devices[id].live)
}
