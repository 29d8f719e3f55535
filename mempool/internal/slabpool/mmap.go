package slabpool

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mmapBuffer acquires size bytes of zeroed memory directly from the
// operating system. The mapping is anonymous and private, no file is
// involved.
func mmapBuffer(size uint64) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap of %d bytes: %s", ErrOutOfMemory, size, err)
	}
	return data, nil
}

func munmapBuffer(data []byte) error {
	return unix.Munmap(data)
}
