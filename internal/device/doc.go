// Package device implements the Lotus device-memory layer: a recorded
// allocator that wraps the native device driver, enforces an optional
// per-device soft memory cap, and keeps an atomic running total of the
// bytes currently allocated through it.
//
// All device allocations in the framework are expected to flow through a
// Recorder obtained from a Registry, so that every byte is accounted for
// and the configured limit can be applied before the driver is touched.
package device
