package mempool

// PoolStats describes the state of one size class.
type PoolStats struct {
	SlotSize uint64
	Slabs    int
	Live     uint64
	Capacity uint64
}

// Stats describes the state of an Allocator. Pool statistics are
// keyed by size class.
type Stats struct {
	Allocs uint64
	Frees  uint64
	Live   uint64
	Pools  map[uint64]PoolStats
}

// Stats reports allocation counts and per-class pool statistics.
// Gathering the per-pool numbers is O(n) in the slab count, this is
// not a hot-path method.
func (a *Allocator) Stats() Stats {
	pools := make(map[uint64]PoolStats, len(a.pools))
	for class, pool := range a.pools {
		pools[class] = PoolStats{
			SlotSize: pool.SlotSize(),
			Slabs:    pool.Slabs(),
			Live:     pool.Size(),
			Capacity: pool.Capacity(),
		}
	}

	return Stats{
		Allocs: a.allocs,
		Frees:  a.frees,
		Live:   a.allocs - a.frees,
		Pools:  pools,
	}
}
