package refcount

import (
	"sync/atomic"
)

// freedMark is stored in place of the count once the free hook has run, so a
// late Retain or Release lands far below zero and is caught as misuse rather
// than silently resurrecting the object.
const freedMark = int64(-1) << 40

// Counter is an intrusive strong-reference count with an optional free hook.
//
// The zero value is ready to use and starts at zero references; the first
// owner typically materializes through refptr.Share, which brings the count to
// one. Retain and Release are safe for concurrent use. The hook set with
// SetFree runs exactly once, on the goroutine that releases the last
// reference; after that the Counter is dead and any further Retain or Release
// panics.
//
// Example:
//
//	type frame struct {
//	    refcount.Counter
//	    pixels []byte
//	}
//
//	f := &frame{pixels: acquire()}
//	f.SetFree(func() { recycle(f.pixels) })
//	ref := refptr.Share(f)
type Counter struct {
	n    atomic.Int64
	free func()
}

// New returns a Counter that runs free when the count reaches zero. free may
// be nil. For embedded counters, call SetFree on the embedding struct instead.
func New(free func()) *Counter {
	counter := &Counter{}
	counter.free = free

	return counter
}

// SetFree registers the hook invoked when the count reaches zero. It must be
// called before the counter is shared between goroutines.
func (counter *Counter) SetFree(free func()) {
	counter.free = free
}

// Retain adds one strong reference. It panics if the count already reached
// zero and the object was freed.
func (counter *Counter) Retain() {
	if n := counter.n.Add(1); n <= 0 {
		panic("refcount: Retain on freed Counter")
	}
}

// Release removes one strong reference. When the count reaches zero the free
// hook runs and the counter becomes dead. Release panics on a count that was
// never retained and on a counter that was already freed.
func (counter *Counter) Release() {
	n := counter.n.Add(-1)

	switch {
	case n == 0:
		counter.n.Store(freedMark)

		if counter.free != nil {
			counter.free()
		}
	case n <= freedMark:
		panic("refcount: Release on freed Counter")
	case n < 0:
		panic("refcount: Release without matching Retain")
	}
}

// Refs returns the current number of strong references, or zero once the
// object has been freed. It exists for tests and diagnostics; lifetime
// decisions belong to Retain and Release alone.
func (counter *Counter) Refs() int64 {
	n := counter.n.Load()
	if n < 0 {
		return 0
	}

	return n
}
