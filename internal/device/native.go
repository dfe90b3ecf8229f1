package device

import "fmt"

// Status is a native driver status code. The zero value is success.
//
// The recorded allocator recognizes exactly two non-success sentinels:
// StatusOutOfMemory and StatusDeinitialized. Every other non-success code
// is treated as an unrecoverable driver fault.
type Status int

// Recognized driver status codes. Vendor drivers may report additional
// codes; they are carried through Status verbatim.
const (
	StatusSuccess Status = iota
	StatusOutOfMemory
	StatusDeinitialized
	StatusInvalidValue
	StatusNotInitialized
	StatusUnknown
)

// OK reports whether the status is success.
func (s Status) OK() bool {
	return s == StatusSuccess
}

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusOutOfMemory:
		return "out of memory"
	case StatusDeinitialized:
		return "runtime deinitialized"
	case StatusInvalidValue:
		return "invalid value"
	case StatusNotInitialized:
		return "not initialized"
	case StatusUnknown:
		return "unknown error"
	default:
		return fmt.Sprintf("driver status %d", int(s))
	}
}

// GridDims is the maximum grid size of a device in each dimension.
type GridDims struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// DeviceProperties describes a single physical device as reported by the
// native driver. All fields are direct pass-through queries.
type DeviceProperties struct {
	Name                        string   `json:"name"`
	TotalMemory                 uint64   `json:"total_memory"`
	ComputeMajor                int      `json:"compute_major"`
	ComputeMinor                int      `json:"compute_minor"`
	DriverVersion               int      `json:"driver_version,omitempty"`
	RuntimeVersion              int      `json:"runtime_version,omitempty"`
	MultiProcessorCount         int      `json:"multiprocessor_count,omitempty"`
	MaxThreadsPerBlock          int      `json:"max_threads_per_block,omitempty"`
	MaxThreadsPerMultiProcessor int      `json:"max_threads_per_multiprocessor,omitempty"`
	MaxGridDims                 GridDims `json:"max_grid_dims,omitempty"`
	ManagedMemory               bool     `json:"managed_memory,omitempty"`
}

// Compute returns the compute capability as "major.minor".
func (p DeviceProperties) Compute() string {
	return fmt.Sprintf("%d.%d", p.ComputeMajor, p.ComputeMinor)
}

// Driver is the native device driver surface the recorded allocator is
// built on. Implementations are expected to be safe for concurrent use.
//
// Alloc, Free and MemInfo operate on the driver's current device; callers
// bind the device first via SetDevice (the Recorder does this with a scoped
// guard around every native call).
type Driver interface {
	// DeviceCount returns the number of physical devices.
	DeviceCount() int

	// SetDevice binds subsequent native calls from this caller to the
	// given device and returns the previously bound device id.
	SetDevice(id int) (prev int, st Status)

	// CurrentDevice returns the currently bound device id.
	CurrentDevice() int

	// Alloc allocates size bytes of device memory. When managed is true
	// the managed (unified) variant is used.
	Alloc(size uint64, managed bool) (ptr uintptr, st Status)

	// Free releases a pointer previously returned by Alloc.
	Free(ptr uintptr) Status

	// MemInfo reports the available and total bytes on the current device.
	MemInfo() (avail, total uint64, st Status)

	// Properties reports the static properties of a device.
	Properties(id int) (DeviceProperties, Status)

	// LastError returns the driver's sticky error flag and clears it.
	LastError() Status
}

// deviceGuard scopes native calls to a recorder's device, restoring the
// previously bound device when released. Mirrors the driver-side device
// context guard so concurrent recorders never misdirect a call.
type deviceGuard struct {
	driver Driver
	prev   int
}

func bindDevice(driver Driver, id int) deviceGuard {
	prev, st := driver.SetDevice(id)
	if !st.OK() {
		fatalStatus("bind device", id, st)
	}
	return deviceGuard{driver: driver, prev: prev}
}

func (g deviceGuard) release() {
	if _, st := g.driver.SetDevice(g.prev); !st.OK() {
		fatalStatus("restore device", g.prev, st)
	}
}
