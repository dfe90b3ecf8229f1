package device

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// minChunkSize is the smallest chunk the upper allocator layers carve
	// out of a device allocation.
	minChunkSize = 256

	mebiByte = 1 << 20
)

// Config holds the process-wide device-memory settings. It is read once at
// startup and shared by every Recorder built from it.
type Config struct {
	// FractionOfMemoryToUse sizes the initial device allocation as a
	// fraction of the currently available memory when no explicit size
	// is configured.
	FractionOfMemoryToUse float64 `yaml:"fraction_of_memory_to_use"`

	// InitialAllocMB, when non-zero, overrides the fraction-based sizing
	// for the first allocation on a device.
	InitialAllocMB uint64 `yaml:"initial_alloc_mb"`

	// ReallocMB, when non-zero, overrides the fraction-based sizing for
	// follow-up growth allocations.
	ReallocMB uint64 `yaml:"realloc_mb"`

	// MemoryLimitMB caps the bytes recorded per device. Zero means
	// unlimited and disables recording overhead entirely.
	MemoryLimitMB uint64 `yaml:"memory_limit_mb"`

	// EnableUsageLog prints a per-device memory usage summary when the
	// registry is closed.
	EnableUsageLog bool `yaml:"enable_usage_log"`

	// UsageLogMB selects MiB (true) or raw bytes (false) as the summary
	// unit.
	UsageLogMB bool `yaml:"usage_log_mb"`

	// TrackBasePointers enables the debug-only live-address set used by
	// Recorder.BasePtr. Off in production configurations.
	TrackBasePointers bool `yaml:"track_base_pointers"`
}

// DefaultConfig returns the stock settings: fraction-based sizing at 92%,
// no limit, usage log disabled.
func DefaultConfig() Config {
	return Config{
		FractionOfMemoryToUse: 0.92,
		UsageLogMB:            true,
	}
}

// LoadConfig reads a YAML config file, filling unset fields from
// DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read device config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse device config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configured values for internal consistency.
func (c Config) Validate() error {
	if c.FractionOfMemoryToUse <= 0 || c.FractionOfMemoryToUse > 1 {
		return fmt.Errorf("fraction_of_memory_to_use %v out of (0, 1]", c.FractionOfMemoryToUse)
	}
	return nil
}

// LimitSize returns the per-device byte limit derived from MemoryLimitMB.
func (c Config) LimitSize() uint64 {
	return c.MemoryLimitMB * mebiByte
}

// allocSize computes the default allocation size for a device: the explicit
// MB setting when present, otherwise the configured fraction of the memory
// currently available to the recorder.
func (c Config) allocSize(r *Recorder, realloc bool) (uint64, error) {
	avail, _, _, _, _ := r.MemInfo()
	if avail == 0 {
		return 0, fmt.Errorf("device %d: no memory available to allocate: %w", r.DeviceID(), ErrOutOfMemory)
	}

	flagMB := c.InitialAllocMB
	if realloc {
		flagMB = c.ReallocMB
	}

	size := uint64(float64(avail) * c.FractionOfMemoryToUse)
	if flagMB > 0 {
		size = flagMB * mebiByte
	}
	if size > avail {
		return 0, fmt.Errorf("device %d: %d bytes requested, %d available: %w",
			r.DeviceID(), size, avail, ErrOutOfMemory)
	}
	return size, nil
}

// InitAllocSize returns the size of the first device allocation the upper
// allocator layers should make on r's device.
func (c Config) InitAllocSize(r *Recorder) (uint64, error) {
	return c.allocSize(r, false)
}

// ReallocSize returns the growth allocation size for r's device.
func (c Config) ReallocSize(r *Recorder) (uint64, error) {
	return c.allocSize(r, true)
}

// MaxAllocSize returns the larger of the initial and growth sizes.
func (c Config) MaxAllocSize(r *Recorder) (uint64, error) {
	initial, err := c.InitAllocSize(r)
	if err != nil {
		return 0, err
	}
	re, err := c.ReallocSize(r)
	if err != nil {
		return 0, err
	}
	return max(initial, re), nil
}

// MinChunkSize returns the smallest chunk granularity.
func (c Config) MinChunkSize() uint64 {
	return minChunkSize
}
