package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) (*ChunkPool, *Recorder, *MockDriver) {
	t.Helper()

	driver := NewMockDriver(1, testDeviceMem)
	reg, err := NewRegistry(driver, DefaultConfig())
	require.NoError(t, err)

	pool, err := reg.Pool(0)
	require.NoError(t, err)
	r, err := reg.Get(0)
	require.NoError(t, err)
	return pool, r, driver
}

func TestChunkPoolReuse(t *testing.T) {
	pool, r, driver := newTestPool(t)

	ptr, size, err := pool.Acquire(8192)
	require.NoError(t, err)
	assert.Equal(t, uint64(8192), size)
	assert.Equal(t, uint64(8192), r.RecordedSize())

	pool.Release(ptr, size)
	// Pooled chunks stay allocated on the device.
	assert.Equal(t, uint64(8192), r.RecordedSize())

	nativeAllocs := driver.AllocCalls()
	again, againSize, err := pool.Acquire(4097)
	require.NoError(t, err)
	assert.Equal(t, ptr, again)
	assert.Equal(t, size, againSize)
	assert.Equal(t, nativeAllocs, driver.AllocCalls(), "reuse must not hit the native allocator")

	allocated, released, hits, misses, pooled := pool.Stats()
	assert.Equal(t, uint64(1), allocated)
	assert.Equal(t, uint64(1), released)
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0, pooled)

	pool.Release(again, againSize)
	pool.Clear()
	assert.Equal(t, uint64(0), r.RecordedSize())
}

func TestChunkPoolMinChunkSize(t *testing.T) {
	pool, _, _ := newTestPool(t)

	ptr, size, err := pool.Acquire(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(minChunkSize), size)
	pool.Release(ptr, size)
	pool.Clear()
}

func TestChunkPoolCategoryMismatch(t *testing.T) {
	pool, _, driver := newTestPool(t)

	// A pooled small chunk cannot satisfy a large request.
	ptr, size, err := pool.Acquire(1024)
	require.NoError(t, err)
	pool.Release(ptr, size)

	before := driver.AllocCalls()
	large, largeSize, err := pool.Acquire(2 << 20)
	require.NoError(t, err)
	assert.Equal(t, before+1, driver.AllocCalls())
	assert.Equal(t, uint64(2<<20), largeSize)

	pool.Release(large, largeSize)
	pool.Clear()
}

func TestChunkPoolClearFreesEverything(t *testing.T) {
	pool, r, driver := newTestPool(t)

	for _, size := range []uint64{512, 64 << 10, 4 << 20} {
		ptr, actual, err := pool.Acquire(size)
		require.NoError(t, err)
		pool.Release(ptr, actual)
	}

	_, _, _, _, pooled := pool.Stats()
	assert.Equal(t, 3, pooled)

	pool.Clear()
	assert.Equal(t, uint64(0), r.RecordedSize())
	assert.Equal(t, 0, driver.LiveAllocs(0))

	_, _, _, _, pooled = pool.Stats()
	assert.Equal(t, 0, pooled)
}

func TestChunkPoolPropagatesOutOfMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MemoryLimitMB = 1
	driver := NewMockDriver(1, testDeviceMem)
	reg, err := NewRegistry(driver, cfg)
	require.NoError(t, err)

	pool, err := reg.Pool(0)
	require.NoError(t, err)

	_, _, err = pool.Acquire(2 << 20)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	// A failed acquire counts as a miss but never as an allocation.
	allocated, _, _, misses, _ := pool.Stats()
	assert.Equal(t, uint64(0), allocated)
	assert.Equal(t, uint64(1), misses)
}
