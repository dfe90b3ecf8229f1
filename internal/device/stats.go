package device

import (
	"fmt"
	"io"
	"sync/atomic"
)

// EventKind classifies a memory event reported to a Tracer.
type EventKind int

// Memory event kinds.
const (
	// ReserveAllocate is emitted after a successful device allocation.
	ReserveAllocate EventKind = iota
	// ReserveFree is emitted after a successful device free.
	ReserveFree
)

// String returns a human-readable event name.
func (k EventKind) String() string {
	switch k {
	case ReserveAllocate:
		return "reserve-allocate"
	case ReserveFree:
		return "reserve-free"
	default:
		return "unknown"
	}
}

// Tracer receives a notification for every successful allocate and free
// that flows through a Recorder. The delta is the signed byte count.
type Tracer interface {
	RecordMemEvent(devID int, delta int64, kind EventKind)
}

// deviceStat tracks reserved bytes for one device.
type deviceStat struct {
	current atomic.Int64
	peak    atomic.Int64
}

func (s *deviceStat) update(delta int64) {
	cur := s.current.Add(delta)
	for {
		peak := s.peak.Load()
		if cur <= peak || s.peak.CompareAndSwap(peak, cur) {
			return
		}
	}
}

// MemoryStats is the built-in Tracer: per-device current and peak reserved
// bytes, updated atomically. It backs the at-exit usage summary.
type MemoryStats struct {
	devices []deviceStat
}

// Verify that MemoryStats implements Tracer.
var _ Tracer = (*MemoryStats)(nil)

// NewMemoryStats creates stats storage for deviceCount devices.
func NewMemoryStats(deviceCount int) *MemoryStats {
	return &MemoryStats{devices: make([]deviceStat, deviceCount)}
}

// RecordMemEvent implements Tracer.
func (m *MemoryStats) RecordMemEvent(devID int, delta int64, _ EventKind) {
	if devID < 0 || devID >= len(m.devices) {
		return
	}
	m.devices[devID].update(delta)
}

// Current returns the bytes currently reserved on a device.
func (m *MemoryStats) Current(devID int) int64 {
	return m.devices[devID].current.Load()
}

// Peak returns the high-water mark of reserved bytes on a device.
func (m *MemoryStats) Peak(devID int) int64 {
	return m.devices[devID].peak.Load()
}

// WriteSummary prints the per-device usage summary, in MiB when inMB is
// true, raw bytes otherwise.
func (m *MemoryStats) WriteSummary(w io.Writer, inMB bool) {
	for id := range m.devices {
		peak := m.devices[id].peak.Load()
		if inMB {
			fmt.Fprintf(w, "[Memory Usage (MB)] device %d : Reserved = %.6f\n",
				id, float64(peak)/float64(mebiByte))
		} else {
			fmt.Fprintf(w, "[Memory Usage (Byte)] device %d : Reserved = %d\n", id, peak)
		}
	}
}
