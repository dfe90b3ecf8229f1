//go:build !windows

package main

import "github.com/lotus-ml/lotus/device"

// newDriver falls back to the in-memory mock driver on platforms without
// a native backend.
func newDriver() (device.Driver, error) {
	return device.NewMockDriver(1, 8<<30), nil
}
