package device

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrOutOfMemory is returned when the native allocator cannot satisfy
	// a request. It is the only allocation failure callers are expected to
	// branch on, typically by triggering a cache eviction pass upstream.
	ErrOutOfMemory = errors.New("out of device memory")

	// ErrSoftLimitExceeded is returned when an allocation is rejected by
	// the recorder's admission check before the native allocator is
	// invoked. It wraps ErrOutOfMemory, so errors.Is(err, ErrOutOfMemory)
	// holds for both failure modes.
	ErrSoftLimitExceeded = fmt.Errorf("soft memory limit exceeded: %w", ErrOutOfMemory)

	// ErrDeviceOutOfRange is returned for a device index outside
	// [0, DeviceCount). This is a programming error and is never retried.
	ErrDeviceOutOfRange = errors.New("device id out of range")

	// ErrUnsupported is returned when a debug-only capability is invoked
	// on a recorder that was not configured with base-pointer tracking.
	ErrUnsupported = errors.New("operation unsupported in this configuration")
)

// fatalStatus aborts on a native status the allocator cannot safely
// continue past. Unknown driver state after an unexpected error makes any
// further native call unsound, so this is deliberately unrecoverable.
func fatalStatus(op string, devID int, st Status) {
	panic(fmt.Sprintf("device %d: %s: unexpected native error: %s", devID, op, st))
}
