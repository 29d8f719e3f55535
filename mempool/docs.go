// # Usage
//
// The mempool package accelerates repeated allocation and freeing of
// small, similarly sized objects. Allocations are served in O(1) from
// pre-carved slabs of memory, one pool of slabs per size class. The
// size class of a request is its size rounded up to the next multiple
// of WordSize, so objects of similar sizes share slabs rather than
// fragmenting into separate pools.
//
// The raw interface hands out unsafe.Pointers:
//
//	alloc := mempool.New()
//	defer alloc.Destroy()
//
//	p, err := alloc.Alloc(40)
//	if err != nil {
//		// the OS refused to provide a new slab
//	}
//
//	// ... use the 40 bytes at p ...
//
//	if err := alloc.Free(p, 40); err != nil {
//		// p was not allocated here, or 40 names an unknown class
//	}
//
// The size passed to Free must adjust to the same class as the size
// passed to Alloc. Passing the original allocation size always works.
//
// Typed allocation is available through ObjectPool, which keys slot
// sizes off the type automatically:
//
//	type vec struct{ X, Y, Z float64 }
//
//	vecs := mempool.NewObjectPool[vec](alloc)
//
//	v, err := vecs.New()
//	v.X = 1.5
//
//	vecs.Release(v)
//	// You must never use v again
//
// Types allocated this way must not contain Go pointers of any kind.
// Slots live in memory mapped outside the Go heap, the garbage
// collector does not scan them, so a pointer stored in a slot keeps
// nothing alive.
//
// # Memory behaviour
//
// Each pool grows by appending slabs, and each new slab doubles the
// capacity of the previous one, so the cost of slab creation
// amortises across allocations. When frees empty the slabs at the
// tail of a pool they are opportunistically released back to the
// operating system. A pool never drops below one slab, and pools
// themselves are never removed - an Allocator's memory footprint is
// bounded by the high-water mark of each size class it has served.
//
// All outstanding allocations are released when Destroy is called.
// Failing to Free an allocation leaks its slot for the lifetime of
// the Allocator but corrupts nothing.
//
// A best effort has been made to panic when a slot is freed twice.
// A double free of a slot which has since been handed out again
// cannot be caught, it frees the newer allocation.
//
// # Concurrency
//
// An Allocator is single-threaded. No method may be called
// concurrently with any other method on the same Allocator. Callers
// who share an Allocator across goroutines must serialise every call
// through an external mutex.
package mempool
