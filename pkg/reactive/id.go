package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for nodes and subscribers.
var globalIDCounter uint64

// NextID returns the next unique ID. IDs are never reused, so packages that
// implement Subscriber can draw from the same sequence as Func.
func NextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
