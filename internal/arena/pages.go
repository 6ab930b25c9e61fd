package arena

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PageSize is the logical page size pages are reserved and committed in
// multiples of.
const PageSize = 1 << 12 // 4096

// reservePages reserves size bytes of address space, rounded up to PageSize,
// with no physical memory backing it. The returned slice has length size but
// must not be read or written until committed.
func reservePages(size int) ([]byte, error) {
	size = alignUp(size, PageSize)
	b, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("reserve %d bytes: %w", size, err)
	}
	return b, nil
}

// commitPages backs mem[:size] with read/write physical pages. size must be
// a multiple of PageSize and must not exceed len(mem).
func commitPages(mem []byte, size int) error {
	if size == 0 {
		return nil
	}
	if err := unix.Mprotect(mem[:size], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("commit %d bytes: %w", size, err)
	}
	return nil
}

// decommitPages returns mem's physical pages to the OS without releasing the
// reservation; the range remains reserved but becomes inaccessible.
func decommitPages(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Madvise(mem, unix.MADV_DONTNEED); err != nil {
		return fmt.Errorf("decommit %d bytes: %w", len(mem), err)
	}
	return unix.Mprotect(mem, unix.PROT_NONE)
}

// releasePages releases a reservation obtained from reservePages, regardless
// of how much of it was committed.
func releasePages(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("release %d bytes: %w", len(mem), err)
	}
	return nil
}

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
