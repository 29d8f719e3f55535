package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vec3 struct {
	X, Y, Z float64
}

type particle struct {
	Position vec3
	Velocity vec3
	Age      int64
}

// Demonstrate that an ObjectPool hands out zeroed, writable values
// and releases them back to the allocator.
func TestObjectPool_NewAndRelease(t *testing.T) {
	alloc := NewSized(4)
	defer alloc.Destroy()

	vecs := NewObjectPool[vec3](alloc)

	v, err := vecs.New()
	require.NoError(t, err)
	assert.Equal(t, vec3{}, *v)

	v.X, v.Y, v.Z = 1.5, -2.5, 3.5
	assert.Equal(t, vec3{1.5, -2.5, 3.5}, *v)

	require.NoError(t, vecs.Release(v))
	assert.Equal(t, uint64(0), alloc.Stats().Live)
}

// Demonstrate that a reused slot is zeroed before it is handed out,
// even though the allocator itself treats recycled slots as
// uninitialized.
func TestObjectPool_ReusedValuesAreZeroed(t *testing.T) {
	alloc := NewSized(4)
	defer alloc.Destroy()

	vecs := NewObjectPool[vec3](alloc)

	v, err := vecs.New()
	require.NoError(t, err)
	v.X, v.Y, v.Z = 9, 9, 9
	require.NoError(t, vecs.Release(v))

	again, err := vecs.New()
	require.NoError(t, err)
	assert.Equal(t, v, again)
	assert.Equal(t, vec3{}, *again)
}

// Demonstrate that object values written through one pool are not
// disturbed by heavy churn on another pool sharing the allocator.
func TestObjectPool_SharedAllocator(t *testing.T) {
	alloc := NewSized(2)
	defer alloc.Destroy()

	vecs := NewObjectPool[vec3](alloc)
	particles := NewObjectPool[particle](alloc)

	held := make([]*vec3, 10)
	for i := range held {
		v, err := vecs.New()
		require.NoError(t, err)
		v.X = float64(i)
		held[i] = v
	}

	for i := 0; i < 100; i++ {
		p, err := particles.New()
		require.NoError(t, err)
		p.Age = int64(i)
		p.Position.Y = 1
		require.NoError(t, particles.Release(p))
	}

	for i, v := range held {
		assert.Equal(t, float64(i), v.X)
		require.NoError(t, vecs.Release(v))
	}
}

// Demonstrate that types containing pointers in any part of their
// type are rejected, while pointer-free compound types are accepted.
func TestAllocObject_RejectsPointerTypes(t *testing.T) {
	alloc := NewSized(4)
	defer alloc.Destroy()

	type named struct {
		Name string
		Id   int64
	}
	type linked struct {
		Next *linked
		Data [4]int32
	}
	type tagged struct {
		Tags map[string]bool
	}
	type nested struct {
		Inner named
	}

	assert.Panics(t, func() { AllocObject[named](alloc) })
	assert.Panics(t, func() { AllocObject[linked](alloc) })
	assert.Panics(t, func() { AllocObject[tagged](alloc) })
	assert.Panics(t, func() { AllocObject[nested](alloc) })
	assert.Panics(t, func() { AllocObject[[]byte](alloc) })

	// Arrays and nested pointer-free structs are fine
	type sample struct {
		Readings [8]float64
		Count    uint32
	}
	s, err := AllocObject[sample](alloc)
	require.NoError(t, err)
	require.NoError(t, FreeObject(alloc, s))
}

// Demonstrate the package level functions directly, including a type
// smaller than the minimum slot size.
func TestAllocObject_SmallType(t *testing.T) {
	alloc := NewSized(4)
	defer alloc.Destroy()

	n, err := AllocObject[int32](alloc)
	require.NoError(t, err)
	*n = 42

	stats := alloc.Stats()
	assert.Equal(t, WordSize, stats.Pools[WordSize].SlotSize)

	assert.Equal(t, int32(42), *n)
	require.NoError(t, FreeObject(alloc, n))
}
