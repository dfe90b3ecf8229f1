package device

import (
	"sync"
	"sync/atomic"

	"github.com/emirpasic/gods/v2/trees/redblacktree"
)

// Recorder wraps the native allocator for one device. It tracks the bytes
// currently allocated through it and, when a limit is configured, rejects
// allocations that would exceed it before the driver is touched.
//
// The limit is a soft cap: the admission check and the native allocation
// are not atomic as a whole, so two concurrent Alloc calls can both pass
// the check and transiently push the recorded size above the limit. This
// is deliberate; callers must treat the limit as best effort, not as a
// hard quota at every instant.
type Recorder struct {
	devID  int
	limit  uint64
	driver Driver
	tracer Tracer

	curSize atomic.Uint64

	// mu makes MemInfo's snapshot of curSize consistent with the native
	// query when a limit is configured. It is never held in Alloc/Free.
	mu sync.Mutex

	// basePtrs maps live base addresses to sizes. Nil unless base-pointer
	// tracking was enabled; only for debug containment lookups.
	basePtrs *redblacktree.Tree[uintptr, uint64]
	ptrMu    sync.Mutex
}

func newRecorder(driver Driver, devID int, limit uint64, trackBase bool, tracer Tracer) *Recorder {
	r := &Recorder{
		devID:  devID,
		limit:  limit,
		driver: driver,
		tracer: tracer,
	}
	if trackBase {
		r.basePtrs = redblacktree.New[uintptr, uint64]()
	}
	return r
}

// DeviceID returns the device index this recorder is bound to.
func (r *Recorder) DeviceID() int {
	return r.devID
}

// RecordedSize returns the bytes currently allocated through this recorder.
func (r *Recorder) RecordedSize() uint64 {
	return r.curSize.Load()
}

// LimitSize returns the configured byte limit. Zero means unlimited.
func (r *Recorder) LimitSize() uint64 {
	return r.limit
}

// NeedsRecording reports whether a limit is configured. When false, Alloc
// skips the admission check and MemInfo never clamps.
func (r *Recorder) NeedsRecording() bool {
	return r.limit != 0
}

// raiseNonOutOfMemory normalizes a failed native status: out-of-memory is
// expected and swallowed, anything else is fatal. The driver's sticky
// error flag is cleared either way so it cannot leak into unrelated calls.
func (r *Recorder) raiseNonOutOfMemory(op string, st Status) {
	if !st.OK() && st != StatusOutOfMemory {
		fatalStatus(op, r.devID, st)
	}
	last := r.driver.LastError()
	if !last.OK() && last != StatusOutOfMemory {
		fatalStatus(op, r.devID, last)
	}
}

// Alloc allocates size bytes of device memory, using the managed (unified)
// variant when managed is true.
//
// The only allocation failure returned is ErrOutOfMemory, either directly
// (native exhaustion) or wrapped as ErrSoftLimitExceeded (rejected by the
// admission check without invoking the driver). Any other native error is
// unrecoverable and panics.
func (r *Recorder) Alloc(size uint64, managed bool) (uintptr, error) {
	if r.NeedsRecording() && r.curSize.Load()+size > r.limit {
		return 0, ErrSoftLimitExceeded
	}

	guard := bindDevice(r.driver, r.devID)
	defer guard.release()

	ptr, st := r.driver.Alloc(size, managed)
	if !st.OK() {
		r.raiseNonOutOfMemory("alloc", st)
		return 0, ErrOutOfMemory
	}

	r.curSize.Add(size)
	if r.tracer != nil {
		r.tracer.RecordMemEvent(r.devID, int64(size), ReserveAllocate)
	}
	if r.basePtrs != nil {
		r.ptrMu.Lock()
		r.basePtrs.Put(ptr, size)
		r.ptrMu.Unlock()
	}
	return ptr, nil
}

// Free releases a pointer previously returned by Alloc, with the size the
// caller allocated it with. Free cannot fail in a caller-recoverable way
// and therefore returns nothing: a deinitialized runtime (the driver
// unloading during process teardown) is swallowed, and any other native
// error panics.
func (r *Recorder) Free(ptr uintptr, size uint64) {
	guard := bindDevice(r.driver, r.devID)
	defer guard.release()

	st := r.driver.Free(ptr)
	if st == StatusDeinitialized {
		// Expected when teardown races the driver unload; clear the flag
		// and keep the recorded size as-is.
		r.driver.LastError()
	} else {
		if !st.OK() {
			fatalStatus("free", r.devID, st)
		}
		r.curSize.Add(^(size - 1)) // atomic subtract
		if r.tracer != nil {
			r.tracer.RecordMemEvent(r.devID, -int64(size), ReserveFree)
		}
	}

	if r.basePtrs != nil {
		r.ptrMu.Lock()
		r.basePtrs.Remove(ptr)
		r.ptrMu.Unlock()
	}
}

// MemInfo queries the device for available and total bytes. When a limit
// is configured the returned avail/total are clamped against the limit and
// the bytes already recorded; actualAvail/actualTotal always carry the raw
// driver values. clamped reports whether total was reduced.
func (r *Recorder) MemInfo() (avail, total, actualAvail, actualTotal uint64, clamped bool) {
	func() {
		guard := bindDevice(r.driver, r.devID)
		defer guard.release()

		var st Status
		actualAvail, actualTotal, st = r.driver.MemInfo()
		if !st.OK() {
			actualAvail = 0
		}
		r.raiseNonOutOfMemory("mem info", st)
	}()

	if !r.NeedsRecording() {
		return actualAvail, actualTotal, actualAvail, actualTotal, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var headroom uint64
	if cur := r.curSize.Load(); cur < r.limit {
		headroom = r.limit - cur
	}
	avail = min(actualAvail, headroom)
	total = min(actualTotal, r.limit)
	return avail, total, actualAvail, actualTotal, total < actualTotal
}

// BasePtr returns the base address of the live allocation containing ptr:
// the largest recorded base address not greater than ptr, or zero when ptr
// precedes every recorded base or nothing is tracked live.
//
// Only available when the recorder was configured with base-pointer
// tracking; otherwise ErrUnsupported is returned.
func (r *Recorder) BasePtr(ptr uintptr) (uintptr, error) {
	if r.basePtrs == nil {
		return 0, ErrUnsupported
	}

	r.ptrMu.Lock()
	defer r.ptrMu.Unlock()

	node, ok := r.basePtrs.Floor(ptr)
	if !ok {
		return 0, nil
	}
	return node.Key, nil
}
