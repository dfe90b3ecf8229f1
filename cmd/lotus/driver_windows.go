//go:build windows

package main

import "github.com/lotus-ml/lotus/device"

// newDriver returns the WebGPU-backed driver.
func newDriver() (device.Driver, error) {
	return device.NewWebGPUDriver()
}
