package device

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Registry owns one Recorder (and one chunk pool above it) per device
// index. It is constructed explicitly and handed to consumers; all device
// allocations in the process are expected to flow through it.
type Registry struct {
	driver    Driver
	cfg       Config
	stats     *MemoryStats
	recorders []*Recorder
	pools     []*ChunkPool

	usageOut  io.Writer
	closeOnce sync.Once
}

// fanoutTracer forwards each event to every registered tracer.
type fanoutTracer []Tracer

func (f fanoutTracer) RecordMemEvent(devID int, delta int64, kind EventKind) {
	for _, t := range f {
		t.RecordMemEvent(devID, delta, kind)
	}
}

// NewRegistry builds a registry over the given driver, with one recorder
// per detected device. Extra tracers receive every allocate/free event in
// addition to the registry's built-in statistics.
func NewRegistry(driver Driver, cfg Config, tracers ...Tracer) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	count := driver.DeviceCount()
	reg := &Registry{
		driver:    driver,
		cfg:       cfg,
		stats:     NewMemoryStats(count),
		recorders: make([]*Recorder, 0, count),
		pools:     make([]*ChunkPool, 0, count),
		usageOut:  os.Stdout,
	}

	tracer := Tracer(reg.stats)
	if len(tracers) > 0 {
		tracer = append(fanoutTracer{reg.stats}, tracers...)
	}

	limit := cfg.LimitSize()
	for id := 0; id < count; id++ {
		r := newRecorder(driver, id, limit, cfg.TrackBasePointers, tracer)
		reg.recorders = append(reg.recorders, r)
		reg.pools = append(reg.pools, NewChunkPool(r))
	}
	return reg, nil
}

// Get returns the recorder for a device index.
func (reg *Registry) Get(id int) (*Recorder, error) {
	if id < 0 || id >= len(reg.recorders) {
		return nil, fmt.Errorf("device id %d not in [0, %d): %w",
			id, len(reg.recorders), ErrDeviceOutOfRange)
	}
	return reg.recorders[id], nil
}

// Pool returns the chunk pool for a device index.
func (reg *Registry) Pool(id int) (*ChunkPool, error) {
	if id < 0 || id >= len(reg.pools) {
		return nil, fmt.Errorf("device id %d not in [0, %d): %w",
			id, len(reg.pools), ErrDeviceOutOfRange)
	}
	return reg.pools[id], nil
}

// DeviceCount returns the number of devices the registry manages.
func (reg *Registry) DeviceCount() int {
	return len(reg.recorders)
}

// CurrentDevice returns the driver's currently bound device id.
func (reg *Registry) CurrentDevice() int {
	return reg.driver.CurrentDevice()
}

// Properties reports the native properties of a device.
func (reg *Registry) Properties(id int) (DeviceProperties, error) {
	if id < 0 || id >= len(reg.recorders) {
		return DeviceProperties{}, fmt.Errorf("device id %d not in [0, %d): %w",
			id, len(reg.recorders), ErrDeviceOutOfRange)
	}
	props, st := reg.driver.Properties(id)
	if !st.OK() {
		fatalStatus("query properties", id, st)
	}
	return props, nil
}

// Stats returns the registry's built-in memory statistics.
func (reg *Registry) Stats() *MemoryStats {
	return reg.stats
}

// Config returns the settings the registry was built with.
func (reg *Registry) Config() Config {
	return reg.cfg
}

// EmptyCache releases every pooled chunk on every device back to the
// native allocator.
func (reg *Registry) EmptyCache() {
	for _, p := range reg.pools {
		p.Clear()
	}
}

// SetUsageOutput redirects the usage summary written by Close.
func (reg *Registry) SetUsageOutput(w io.Writer) {
	reg.usageOut = w
}

// Close releases pooled memory and, when configured, prints the per-device
// memory usage summary. Safe to call more than once.
func (reg *Registry) Close() {
	reg.closeOnce.Do(func() {
		reg.EmptyCache()
		if reg.cfg.EnableUsageLog {
			reg.stats.WriteSummary(reg.usageOut, reg.cfg.UsageLogMB)
		}
	})
}

// Process-wide default registry. Initialized exactly once via InitDefault;
// consumers that cannot be handed a registry explicitly share this one.
var (
	defaultMu  sync.Mutex
	defaultReg *Registry
)

// InitDefault initializes the process-wide registry. The first successful
// call wins; later calls return the already-initialized registry.
func InitDefault(driver Driver, cfg Config, tracers ...Tracer) (*Registry, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultReg != nil {
		return defaultReg, nil
	}
	reg, err := NewRegistry(driver, cfg, tracers...)
	if err != nil {
		return nil, err
	}
	defaultReg = reg
	return reg, nil
}

// Default returns the process-wide registry. It panics when InitDefault
// has not been called; requiring explicit initialization keeps the device
// layer free of hidden lazily-created state.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultReg == nil {
		panic("device: Default called before InitDefault")
	}
	return defaultReg
}
