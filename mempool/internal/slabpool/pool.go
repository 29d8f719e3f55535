package slabpool

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory indicates that the operating system refused to
	// provide the buffer for a new slab.
	ErrOutOfMemory = errors.New("slabpool: out of memory")

	// ErrInvalidFree indicates that a freed pointer belongs to no
	// slab in the pool.
	ErrInvalidFree = errors.New("slabpool: pointer does not belong to this pool")
)

const noSlab = -1

// A Pool manages every slab of one slot size. Allocations are routed
// to a non-full slab, and the slab sequence grows when none exists.
// Each new slab doubles the capacity target, amortising slab creation
// across allocations.
//
// lastAlloc and lastFree remember the slab touched by the most recent
// allocate and free. Allocations and frees tend to cluster in one
// slab, so both hints are consulted before any wider search.
type Pool struct {
	// Immutable fields
	slotSize uint64

	// Mutable fields
	growthCount uint64
	slabs       []*slab
	lastAlloc   int
	lastFree    int
}

// NewPool creates an empty pool serving slotSize byte slots. The
// first slab will hold numSlots slots, each slab after that doubles
// the count.
func NewPool(numSlots, slotSize uint64) *Pool {
	return &Pool{
		slotSize:    slotSize,
		growthCount: numSlots,
		slabs:       []*slab{},
		lastAlloc:   noSlab,
		lastFree:    noSlab,
	}
}

func (p *Pool) SlotSize() uint64 { return p.slotSize }

// Alloc returns the address of a free slot. The slab which served the
// last allocation is tried first, then the slabs are scanned in
// order, and only if every slab is full does the pool grow.
func (p *Pool) Alloc(slotSize uint64) (uintptr, error) {
	if slotSize != p.slotSize {
		panic(fmt.Errorf("pool for %d byte slots asked to allocate %d byte slots", p.slotSize, slotSize))
	}

	var target *slab

	switch {
	case len(p.slabs) == 0:
		s, err := p.appendSlab(p.growthCount)
		if err != nil {
			return 0, err
		}
		p.lastAlloc = 0
		target = s
	case p.lastAlloc != noSlab && !p.slabs[p.lastAlloc].full():
		target = p.slabs[p.lastAlloc]
	default:
		for i, s := range p.slabs {
			if !s.full() {
				p.lastAlloc = i
				target = s
				break
			}
		}
		if target == nil {
			doubled := p.growthCount * 2
			s, err := p.appendSlab(doubled)
			if err != nil {
				return 0, err
			}
			p.growthCount = doubled
			p.lastAlloc = len(p.slabs) - 1
			target = s
		}
	}

	ptr, ok := target.allocate(p.slotSize)
	if !ok {
		// Unreachable while the selection above holds, but an
		// observable error beats silent corruption
		return 0, fmt.Errorf("%w: selected slab unexpectedly full", ErrOutOfMemory)
	}
	return ptr, nil
}

// appendSlab creates and initializes a slab of numSlots slots. On
// failure no pool state changes.
func (p *Pool) appendSlab(numSlots uint64) (*slab, error) {
	s := newSlab(numSlots)
	if err := s.initialize(p.slotSize); err != nil {
		return nil, err
	}
	p.slabs = append(p.slabs, s)
	return s, nil
}

// Free returns a slot to its owning slab. The search starts at the
// slab which served the last free and widens one slab at a time in
// both directions, so the common case touches a single slab. If the
// search exhausts every slab the pointer was never issued by this
// pool and ErrInvalidFree is returned.
func (p *Pool) Free(ptr uintptr, slotSize uint64) error {
	if slotSize != p.slotSize {
		panic(fmt.Errorf("pool for %d byte slots asked to free %d byte slots", p.slotSize, slotSize))
	}

	lo := p.lastFree
	hi := p.lastFree + 1
	p.lastFree = noSlab

	owner := noSlab
	for lo >= 0 || hi < len(p.slabs) {
		if lo >= 0 {
			if p.slabs[lo].deallocate(ptr, slotSize) {
				owner = lo
				break
			}
			lo--
		}
		if hi < len(p.slabs) {
			if p.slabs[hi].deallocate(ptr, slotSize) {
				owner = hi
				break
			}
			hi++
		}
	}

	if owner == noSlab {
		return fmt.Errorf("%w: %#x", ErrInvalidFree, ptr)
	}
	p.lastFree = owner

	if p.slabs[owner].empty() {
		return p.shrink()
	}
	return nil
}

// shrink reclaims the trailing slab when the pool can spare it. The
// pool never drops below one slab and no live slot is disturbed, at
// most one empty tail slab is destroyed per call.
func (p *Pool) shrink() error {
	freed := p.lastFree
	p.lastFree = noSlab

	if len(p.slabs) == 1 {
		// Keep the last slab for the next allocation
		return nil
	}

	last := len(p.slabs) - 1
	if freed == last {
		// The tail will be reused soon, leave it in place
		return nil
	}

	if !p.slabs[last].empty() {
		return nil
	}

	// Reclaim the empty tail. The next growth is seeded from the
	// reclaimed capacity.
	reclaimed := p.slabs[last]
	p.growthCount = reclaimed.capacity()
	p.slabs = p.slabs[:last]
	if p.lastAlloc == last {
		p.lastAlloc = noSlab
	}

	if freed < last-1 {
		// Move the freed, empty slab to the tail so a later
		// shrink can reclaim it too
		newLast := len(p.slabs) - 1
		p.slabs[freed], p.slabs[newLast] = p.slabs[newLast], p.slabs[freed]
		switch p.lastAlloc {
		case freed:
			p.lastAlloc = newLast
		case newLast:
			p.lastAlloc = freed
		}
	}

	return reclaimed.destroy()
}

// Size is the number of slots currently in use across all slabs.
// O(n) in the slab count.
func (p *Pool) Size() uint64 {
	total := uint64(0)
	for _, s := range p.slabs {
		total += s.size()
	}
	return total
}

// Capacity is the total number of slots, used and unused, across all
// slabs. O(n) in the slab count.
func (p *Pool) Capacity() uint64 {
	total := uint64(0)
	for _, s := range p.slabs {
		total += s.capacity()
	}
	return total
}

// Slabs returns the number of slabs currently held.
func (p *Pool) Slabs() int { return len(p.slabs) }

// Destroy releases every slab's buffer back to the operating system.
// The pool must not be used afterwards.
func (p *Pool) Destroy() error {
	slabs := p.slabs
	p.slabs = nil
	for _, s := range slabs {
		if err := s.destroy(); err != nil {
			return err
		}
	}
	return nil
}
