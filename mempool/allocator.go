package mempool

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/fmstephe/flib/fmath"
	"github.com/memkit/mempool/mempool/internal/slabpool"
)

// WordSize is the alignment of every allocation and the granularity
// of size classes. It matches the width of the intrusive free-list
// indices, so every slot is large enough to hold one.
const WordSize = slabpool.IndexSize

const defaultNumSlots = 1 << 10

var (
	// ErrOutOfMemory is returned by Alloc when the operating system
	// refuses to provide a new slab.
	ErrOutOfMemory = slabpool.ErrOutOfMemory

	// ErrInvalidFree is returned by Free when the pointer was never
	// issued by the pool for its size class.
	ErrInvalidFree = slabpool.ErrInvalidFree

	// ErrUnknownSize is returned by Free when Alloc has never been
	// called with a size of the same class.
	ErrUnknownSize = errors.New("mempool: no pool for size class")
)

// An Allocator serves fixed-size allocations from pools of slabs, one
// pool per size class. Allocations of similar sizes share a pool, the
// class of a size is Adjust(size). Pools are created lazily on the
// first allocation of their class and live until Destroy.
//
// An Allocator must not be copied after first use. It is not safe for
// concurrent use - callers sharing one across goroutines must wrap
// every call in a mutex.
type Allocator struct {
	// Immutable fields
	numSlots uint64

	// Mutable fields
	pools  map[uint64]*slabpool.Pool
	allocs uint64
	frees  uint64
}

// New returns an Allocator whose pools start with 1024-slot slabs.
func New() *Allocator {
	return NewSized(defaultNumSlots)
}

// NewSized returns an Allocator whose pools start with slabs of
// numSlots slots. numSlots is rounded up to a power of two, keeping
// every slab capacity a power of two under doubling growth.
func NewSized(numSlots uint64) *Allocator {
	if numSlots == 0 {
		numSlots = defaultNumSlots
	}
	return &Allocator{
		numSlots: uint64(fmath.NxtPowerOfTwo(int64(numSlots))),
		pools:    map[uint64]*slabpool.Pool{},
	}
}

// Adjust rounds size up to the size class which will serve it: the
// next multiple of WordSize, never less than WordSize. Adjust is pure
// and idempotent, and is exposed for clients that need to query the
// class of a size.
func Adjust(size uint64) uint64 {
	if size <= WordSize {
		return WordSize
	}
	if rem := size % WordSize; rem != 0 {
		size += WordSize - rem
	}
	return size
}

// Alloc returns a pointer to at least Adjust(size) bytes, aligned to
// WordSize. The memory stays valid until the matching Free. A non-nil
// error always wraps ErrOutOfMemory, and leaves the allocator in a
// consistent, usable state.
func (a *Allocator) Alloc(size uint64) (unsafe.Pointer, error) {
	class := Adjust(size)

	pool, ok := a.pools[class]
	if !ok {
		pool = slabpool.NewPool(a.numSlots, class)
		a.pools[class] = pool
	}

	ptr, err := pool.Alloc(class)
	if err != nil {
		return nil, err
	}

	a.allocs++
	return unsafe.Pointer(ptr), nil
}

// Free releases a pointer previously returned by Alloc. The size must
// adjust to the same class as the size passed to Alloc. Freeing with
// a class no allocation ever used returns ErrUnknownSize, freeing a
// pointer the class's pool never issued returns ErrInvalidFree. In
// both cases the allocator state is unchanged.
func (a *Allocator) Free(ptr unsafe.Pointer, size uint64) error {
	class := Adjust(size)

	pool, ok := a.pools[class]
	if !ok {
		return fmt.Errorf("%w: %d bytes (class %d)", ErrUnknownSize, size, class)
	}

	if err := pool.Free(uintptr(ptr), class); err != nil {
		return err
	}

	a.frees++
	return nil
}

// Bytes views an allocation as a byte slice covering its full slot of
// Adjust(size) bytes.
func Bytes(ptr unsafe.Pointer, size uint64) []byte {
	return unsafe.Slice((*byte)(ptr), Adjust(size))
}

// Destroy releases every slab of every pool back to the operating
// system. Any outstanding allocations are released with them, so no
// pointer returned by Alloc may be used afterwards. The Allocator is
// completely unusable after this call.
func (a *Allocator) Destroy() error {
	pools := a.pools
	a.pools = nil

	for _, pool := range pools {
		if err := pool.Destroy(); err != nil {
			return err
		}
	}
	return nil
}
