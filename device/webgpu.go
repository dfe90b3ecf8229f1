//go:build windows

// Copyright 2026 Lotus ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package device

import (
	"github.com/lotus-ml/lotus/internal/device"
)

// WebGPUDriver backs the recorded allocator with WebGPU storage buffers.
type WebGPUDriver = device.WebGPUDriver

// NewWebGPUDriver initializes WebGPU and returns a driver over the
// high-performance adapter.
//
// Returns an error if WebGPU initialization fails (e.g., no compatible GPU).
func NewWebGPUDriver() (*WebGPUDriver, error) {
	return device.NewWebGPUDriver()
}
