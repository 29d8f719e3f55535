package mempool

import (
	"fmt"
	"unsafe"
)

// An ObjectPool allocates values of a single type from an Allocator,
// keyed by the type's size. Several ObjectPools may share one
// Allocator, in which case types whose sizes adjust to the same class
// share slabs.
//
// T must not contain any Go pointers. The slots live outside the Go
// heap, so the garbage collector never sees them and a pointer stored
// in one keeps nothing alive. Strings, maps, slices, channels and
// conventional pointers all contain pointers. Allocating a type found
// to contain pointers panics.
type ObjectPool[T any] struct {
	alloc *Allocator
}

// NewObjectPool returns an ObjectPool drawing slots from alloc.
func NewObjectPool[T any](alloc *Allocator) *ObjectPool[T] {
	return &ObjectPool[T]{alloc: alloc}
}

// New returns a pointer to a zeroed T.
func (p *ObjectPool[T]) New() (*T, error) {
	return AllocObject[T](p.alloc)
}

// Release returns obj's slot to the pool. obj must not be used
// afterwards.
func (p *ObjectPool[T]) Release(obj *T) error {
	return FreeObject(p.alloc, obj)
}

// AllocObject allocates a slot large enough for a T and returns it as
// a zeroed *T. The type T must not contain any pointers in any part
// of its type, if it is found to contain pointers this function will
// panic. Reused slots contain the remains of earlier allocations, so
// the value is zeroed explicitly before it is handed out.
func AllocObject[T any](alloc *Allocator) (*T, error) {
	// TODO this is not fast - we should cache the check per type
	if err := containsNoPointers[T](); err != nil {
		panic(fmt.Errorf("cannot allocate generic type containing pointers: %w", err))
	}

	var zero T

	ptr, err := alloc.Alloc(uint64(unsafe.Sizeof(zero)))
	if err != nil {
		return nil, err
	}

	obj := (*T)(ptr)
	*obj = zero
	return obj, nil
}

// FreeObject releases an object allocated by AllocObject.
func FreeObject[T any](alloc *Allocator, obj *T) error {
	var zero T
	return alloc.Free(unsafe.Pointer(obj), uint64(unsafe.Sizeof(zero)))
}
