package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sort"
	"time"
	"unsafe"

	"github.com/memkit/mempool/mempool"
)

var (
	slotsFlag   = flag.Uint64("slots", 1024, "Initial slab capacity for each size class")
	opsFlag     = flag.Int("ops", 1000000, "Number of allocate/free operations to run")
	maxSizeFlag = flag.Uint64("maxsize", 256, "Largest allocation size requested")
	seedFlag    = flag.Int64("seed", 1, "Seed for the workload's random number generator")
)

type allocation struct {
	ptr  unsafe.Pointer
	size uint64
}

func main() {
	flag.Parse()

	r := rand.New(rand.NewSource(*seedFlag))

	alloc := mempool.NewSized(*slotsFlag)
	defer alloc.Destroy()

	live := []allocation{}
	start := time.Now()

	for i := 0; i < *opsFlag; i++ {
		if len(live) == 0 || r.Intn(2) == 0 {
			size := 1 + r.Uint64()%(*maxSizeFlag)
			ptr, err := alloc.Alloc(size)
			if err != nil {
				fmt.Printf("Allocation of %d bytes failed: %s\n", size, err)
				return
			}
			live = append(live, allocation{ptr: ptr, size: size})
		} else {
			idx := r.Intn(len(live))
			target := live[idx]
			if err := alloc.Free(target.ptr, target.size); err != nil {
				fmt.Printf("Free failed: %s\n", err)
				return
			}
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
		}
	}

	elapsed := time.Since(start)

	stats := alloc.Stats()
	fmt.Printf("Ran %d operations in %s\n", *opsFlag, elapsed)
	fmt.Printf("%d allocs, %d frees, %d live\n", stats.Allocs, stats.Frees, stats.Live)

	classes := make([]uint64, 0, len(stats.Pools))
	for class := range stats.Pools {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	for _, class := range classes {
		ps := stats.Pools[class]
		fmt.Printf("class %4d: %2d slabs, %6d live of %6d slots\n", class, ps.Slabs, ps.Live, ps.Capacity)
	}

	for _, target := range live {
		if err := alloc.Free(target.ptr, target.size); err != nil {
			fmt.Printf("Final free failed: %s\n", err)
			return
		}
	}
}
