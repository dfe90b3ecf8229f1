// Copyright 2026 Lotus ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device provides the public API of the Lotus device-memory
// layer: a recorded allocator that wraps the native driver, enforces an
// optional per-device soft memory cap, and accounts every byte allocated
// through it.
//
// Example:
//
//	import "github.com/lotus-ml/lotus/device"
//
//	func main() {
//	    cfg := device.DefaultConfig()
//	    cfg.MemoryLimitMB = 4096
//
//	    reg, err := device.NewRegistry(device.NewMockDriver(1, 8<<30), cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer reg.Close()
//
//	    r, _ := reg.Get(0)
//	    ptr, err := r.Alloc(1<<20, false)
//	    if errors.Is(err, device.ErrOutOfMemory) {
//	        // evict caches upstream and retry
//	    }
//	    defer r.Free(ptr, 1<<20)
//	}
package device

import (
	"github.com/lotus-ml/lotus/internal/device"
)

// Type aliases for public API

// Registry owns one Recorder and one ChunkPool per device index.
type Registry = device.Registry

// Recorder wraps the native allocator for one device, tracking allocated
// bytes and enforcing the configured soft limit.
type Recorder = device.Recorder

// ChunkPool caches freed device chunks for reuse above a Recorder.
type ChunkPool = device.ChunkPool

// Config holds the process-wide device-memory settings.
type Config = device.Config

// Driver is the native device driver surface.
type Driver = device.Driver

// DeviceProperties describes a physical device.
type DeviceProperties = device.DeviceProperties

// GridDims is the maximum grid size of a device.
type GridDims = device.GridDims

// Status is a native driver status code.
type Status = device.Status

// Native status codes.
const (
	StatusSuccess       Status = device.StatusSuccess
	StatusOutOfMemory   Status = device.StatusOutOfMemory
	StatusDeinitialized Status = device.StatusDeinitialized
)

// Tracer receives every allocate/free event.
type Tracer = device.Tracer

// MemoryStats is the built-in Tracer with per-device current/peak bytes.
type MemoryStats = device.MemoryStats

// EventKind classifies memory events.
type EventKind = device.EventKind

// Memory event kinds.
const (
	ReserveAllocate EventKind = device.ReserveAllocate
	ReserveFree     EventKind = device.ReserveFree
)

// MockDriver is the in-memory driver used for testing and as a stub on
// platforms without a native backend.
type MockDriver = device.MockDriver

// Errors.
var (
	ErrOutOfMemory       = device.ErrOutOfMemory
	ErrSoftLimitExceeded = device.ErrSoftLimitExceeded
	ErrDeviceOutOfRange  = device.ErrDeviceOutOfRange
	ErrUnsupported       = device.ErrUnsupported
)

// DefaultConfig returns the stock device-memory settings.
func DefaultConfig() Config {
	return device.DefaultConfig()
}

// LoadConfig reads a YAML config file, filling unset fields from
// DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return device.LoadConfig(path)
}

// NewRegistry builds a registry over the given driver.
func NewRegistry(driver Driver, cfg Config, tracers ...Tracer) (*Registry, error) {
	return device.NewRegistry(driver, cfg, tracers...)
}

// InitDefault initializes the process-wide registry exactly once.
func InitDefault(driver Driver, cfg Config, tracers ...Tracer) (*Registry, error) {
	return device.InitDefault(driver, cfg, tracers...)
}

// Default returns the process-wide registry initialized by InitDefault.
func Default() *Registry {
	return device.Default()
}

// NewMockDriver creates a mock driver with deviceCount devices of
// totalMem bytes each.
func NewMockDriver(deviceCount int, totalMem uint64) *MockDriver {
	return device.NewMockDriver(deviceCount, totalMem)
}

// NewMemoryStats creates stats storage for deviceCount devices.
func NewMemoryStats(deviceCount int) *MemoryStats {
	return device.NewMemoryStats(deviceCount)
}
