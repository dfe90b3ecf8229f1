package device

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStatsPeak(t *testing.T) {
	stats := NewMemoryStats(2)

	stats.RecordMemEvent(0, 1024, ReserveAllocate)
	stats.RecordMemEvent(0, 2048, ReserveAllocate)
	stats.RecordMemEvent(0, -1024, ReserveFree)

	assert.Equal(t, int64(2048), stats.Current(0))
	assert.Equal(t, int64(3072), stats.Peak(0))
	assert.Equal(t, int64(0), stats.Current(1))
	assert.Equal(t, int64(0), stats.Peak(1))
}

func TestMemoryStatsIgnoresUnknownDevice(t *testing.T) {
	stats := NewMemoryStats(1)

	assert.NotPanics(t, func() {
		stats.RecordMemEvent(-1, 100, ReserveAllocate)
		stats.RecordMemEvent(5, 100, ReserveAllocate)
	})
	assert.Equal(t, int64(0), stats.Current(0))
}

func TestMemoryStatsConcurrentPeak(t *testing.T) {
	stats := NewMemoryStats(1)

	const goroutines = 16
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				stats.RecordMemEvent(0, 64, ReserveAllocate)
				stats.RecordMemEvent(0, -64, ReserveFree)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(0), stats.Current(0))
	assert.GreaterOrEqual(t, stats.Peak(0), int64(64))
}

func TestWriteSummaryUnits(t *testing.T) {
	stats := NewMemoryStats(1)
	stats.RecordMemEvent(0, 3<<20, ReserveAllocate)

	var mb bytes.Buffer
	stats.WriteSummary(&mb, true)
	assert.Equal(t, "[Memory Usage (MB)] device 0 : Reserved = 3.000000\n", mb.String())

	var raw bytes.Buffer
	stats.WriteSummary(&raw, false)
	assert.Equal(t, "[Memory Usage (Byte)] device 0 : Reserved = 3145728\n", raw.String())
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "reserve-allocate", ReserveAllocate.String())
	assert.Equal(t, "reserve-free", ReserveFree.String())
}
