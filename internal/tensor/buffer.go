package tensor

import (
	"sync"
	"sync/atomic"
)

// Buffer is a reference-counted memory holder shared between tensors.
// Sharing a Buffer is what ties two tensors to the same storage; the
// reference count enables cheap cloning and inplace optimizations when
// a tensor holds the only reference.
type Buffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// NewBuffer creates a new reference-counted buffer with refCount = 1.
func NewBuffer(size int) *Buffer {
	buf := &Buffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// Len returns the buffer's size in bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// addRef increments the reference count (for sharing operations).
func (b *Buffer) addRef() {
	b.refCount.Add(1)
}

// release decrements the reference count and deallocates if it reaches 0.
func (b *Buffer) release() {
	if b.refCount.Add(-1) == 0 {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.data = nil
	}
}

// isUnique returns true if this buffer has only one reference.
func (b *Buffer) isUnique() bool {
	return b.refCount.Load() == 1
}
