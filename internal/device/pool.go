package device

import "sync"

// ChunkSize represents different chunk size categories for pooling.
type ChunkSize int

const (
	// SmallChunk for allocations < 4KB.
	SmallChunk ChunkSize = iota
	// MediumChunk for allocations 4KB-1MB.
	MediumChunk
	// LargeChunk for allocations > 1MB.
	LargeChunk
)

const (
	// Size thresholds for chunk categories.
	smallThreshold  = 4 * 1024    // 4KB
	mediumThreshold = 1024 * 1024 // 1MB
	maxPoolSize     = 100         // Max chunks per category
)

// pooledChunk is a device allocation held for reuse.
type pooledChunk struct {
	ptr  uintptr
	size uint64
}

// ChunkPool caches freed device chunks for reuse to reduce native
// allocation overhead. Every chunk it hands out or takes back flows
// through the recorder, so pooled memory stays fully accounted.
type ChunkPool struct {
	recorder *Recorder

	// Pools organized by size category
	small  []pooledChunk
	medium []pooledChunk
	large  []pooledChunk

	mu sync.Mutex

	// Statistics
	totalAllocated uint64
	totalReleased  uint64
	poolHits       uint64
	poolMisses     uint64
}

// NewChunkPool creates a chunk pool above the given recorder.
func NewChunkPool(recorder *Recorder) *ChunkPool {
	return &ChunkPool{
		recorder: recorder,
		small:    make([]pooledChunk, 0, maxPoolSize),
		medium:   make([]pooledChunk, 0, maxPoolSize),
		large:    make([]pooledChunk, 0, maxPoolSize),
	}
}

// Acquire returns a chunk of at least size bytes, reusing a pooled chunk
// when one fits and allocating through the recorder otherwise. The
// returned size is the chunk's actual size, which the caller must pass
// back to Release.
func (p *ChunkPool) Acquire(size uint64) (ptr uintptr, actual uint64, err error) {
	if size < minChunkSize {
		size = minChunkSize
	}

	p.mu.Lock()
	category := p.categorize(size)
	pool := p.getPool(category)

	// Try to find a suitable chunk in the pool
	for i, pc := range pool {
		if pc.size >= size {
			p.removeFromPool(category, i)
			p.poolHits++
			p.mu.Unlock()
			return pc.ptr, pc.size, nil
		}
	}

	p.poolMisses++
	p.mu.Unlock()

	// No suitable chunk found - allocate a new one. The recorder call is
	// made outside the pool lock; it may block on the driver.
	ptr, err = p.recorder.Alloc(size, false)
	if err != nil {
		return 0, 0, err
	}

	p.mu.Lock()
	p.totalAllocated++
	p.mu.Unlock()
	return ptr, size, nil
}

// Release returns a chunk to the pool for reuse. If the pool category is
// full, the chunk is freed through the recorder immediately.
func (p *ChunkPool) Release(ptr uintptr, size uint64) {
	p.mu.Lock()

	p.totalReleased++

	category := p.categorize(size)
	pool := p.getPool(category)

	if len(pool) >= maxPoolSize {
		p.mu.Unlock()
		p.recorder.Free(ptr, size)
		return
	}

	p.addToPool(category, pooledChunk{ptr: ptr, size: size})
	p.mu.Unlock()
}

// Clear frees all pooled chunks through the recorder.
func (p *ChunkPool) Clear() {
	p.mu.Lock()
	chunks := make([]pooledChunk, 0, len(p.small)+len(p.medium)+len(p.large))
	chunks = append(chunks, p.small...)
	chunks = append(chunks, p.medium...)
	chunks = append(chunks, p.large...)
	p.small = p.small[:0]
	p.medium = p.medium[:0]
	p.large = p.large[:0]
	p.mu.Unlock()

	for _, pc := range chunks {
		p.recorder.Free(pc.ptr, pc.size)
	}
}

// Stats returns statistics about chunk pool usage.
func (p *ChunkPool) Stats() (allocated, released, hits, misses uint64, pooledCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.totalAllocated, p.totalReleased, p.poolHits, p.poolMisses,
		len(p.small) + len(p.medium) + len(p.large)
}

// categorize determines the size category for a chunk.
func (p *ChunkPool) categorize(size uint64) ChunkSize {
	if size < smallThreshold {
		return SmallChunk
	}
	if size < mediumThreshold {
		return MediumChunk
	}
	return LargeChunk
}

// getPool returns the pool slice for a given category.
func (p *ChunkPool) getPool(category ChunkSize) []pooledChunk {
	switch category {
	case SmallChunk:
		return p.small
	case MediumChunk:
		return p.medium
	case LargeChunk:
		return p.large
	default:
		return nil
	}
}

// addToPool adds a chunk to the appropriate pool category.
func (p *ChunkPool) addToPool(category ChunkSize, pc pooledChunk) {
	switch category {
	case SmallChunk:
		p.small = append(p.small, pc)
	case MediumChunk:
		p.medium = append(p.medium, pc)
	case LargeChunk:
		p.large = append(p.large, pc)
	}
}

// removeFromPool removes the chunk at index i from the appropriate pool.
func (p *ChunkPool) removeFromPool(category ChunkSize, i int) {
	switch category {
	case SmallChunk:
		p.small = append(p.small[:i], p.small[i+1:]...)
	case MediumChunk:
		p.medium = append(p.medium[:i], p.medium[i+1:]...)
	case LargeChunk:
		p.large = append(p.large[:i], p.large[i+1:]...)
	}
}
