// Package arena implements a reserve/commit bump allocator: a large address
// range is reserved up front, grown on demand by committing more pages, and
// chains to fresh sub-arenas when its tail is exhausted. Retired sub-arenas
// are recycled through a LIFO free list rather than released back to the OS.
//
// There is no per-allocation free. Callers either bump-allocate with Push,
// rewind to an earlier checkpoint with PopTo/Clear, or tear the whole thing
// down with Release.
package arena

import (
	"fmt"

	"github.com/elliotnunn/unzigo/internal/zerr"
)

// HeaderSize is the number of bytes reserved at the front of every chained
// arena's committed range for its own bookkeeping. User allocations never
// start before this offset.
const HeaderSize = 128

const (
	defaultReserve    = 64 << 20 // 64MiB address range per arena by default
	defaultCommitGrow = 1 << 20  // grow committed pages 1MiB at a time
)

// node is one link in the active chain (or, once retired, in the free list).
type node struct {
	mem        []byte // full reservation, len == reserved
	reserved   int
	committed  int
	commitGrow int
	pos        int // bump offset from the start of mem; HeaderSize <= pos <= committed
	basePos    int // sum of `reserved` of every predecessor in the active chain
	site       string

	prev     *node // previous arena in the active chain
	freeNext *node // next arena in the free list (nil in the active chain)
}

// Arena is the externally held handle: the head of a chain of nodes.
type Arena struct {
	head     *node
	current  *node // tail of the active chain; allocations go here
	freeLast *node // most recently retired node, LIFO recycling candidate
	freeSize int    // sum of `reserved` of every free-listed node
	released bool
}

// New creates a head arena with the given reserve and commit-grow sizes,
// rounded up to the page size. site is a short label for diagnostics (e.g.
// the caller's component name), mirroring the "site" tag the spec's alloc
// call carries.
func New(reserveSize, commitSize int, site string) (*Arena, error) {
	if reserveSize <= 0 {
		reserveSize = defaultReserve
	}
	if commitSize <= 0 {
		commitSize = defaultCommitGrow
	}
	n, err := newNode(reserveSize, commitSize, 0, site)
	if err != nil {
		return nil, err
	}
	return &Arena{head: n, current: n}, nil
}

func newNode(reserveSize, commitSize, basePos int, site string) (*node, error) {
	reserveSize = alignUp(reserveSize, PageSize)
	commitSize = alignUp(commitSize, PageSize)
	if commitSize > reserveSize {
		commitSize = reserveSize
	}
	if commitSize < HeaderSize {
		commitSize = alignUp(HeaderSize, PageSize)
	}

	mem, err := reservePages(reserveSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", zerr.ErrOutOfMemory, site, err)
	}
	if err := commitPages(mem, commitSize); err != nil {
		releasePages(mem)
		return nil, fmt.Errorf("%w: %s: %v", zerr.ErrOutOfMemory, site, err)
	}
	return &node{
		mem:        mem,
		reserved:   reserveSize,
		committed:  commitSize,
		commitGrow: commitSize,
		pos:        HeaderSize,
		basePos:    basePos,
		site:       site,
	}, nil
}

// Push bump-allocates size bytes aligned to align (a power of two) and
// returns a slice view onto arena-owned memory. The slice is valid until the
// position it was allocated at is rewound by PopTo/Clear or the Arena is
// released.
func (a *Arena) Push(size, align int) ([]byte, error) {
	if a.released {
		return nil, fmt.Errorf("%w: arena already released", zerr.ErrOutOfMemory)
	}
	if align <= 0 {
		align = 1
	}

	for attempt := 0; attempt < 2; attempt++ {
		c := a.current
		start := alignUp(c.pos, align)
		end := start + size
		if end <= c.reserved {
			if end > c.committed {
				want := alignUp(end, c.commitGrow)
				if want > c.reserved {
					want = c.reserved
				}
				if err := commitPages(c.mem, want); err != nil {
					return nil, fmt.Errorf("%w: %s: %v", zerr.ErrOutOfMemory, c.site, err)
				}
				c.committed = want
			}
			c.pos = end
			return c.mem[start:end:end], nil
		}

		// Tail exhausted: recycle the free-list head if it fits, else grow
		// a fresh arena with the same reserve/commit sizes as the tail.
		var next *node
		if a.freeLast != nil && a.freeLast.reserved >= size {
			next = a.freeLast
			a.freeLast = next.freeNext
			a.freeSize -= next.reserved
			next.pos = HeaderSize
			next.freeNext = nil
		} else {
			var err error
			next, err = newNode(c.reserved, c.commitGrow, c.basePos+c.reserved, c.site)
			if err != nil {
				return nil, err
			}
		}
		next.prev = c
		next.basePos = c.basePos + c.reserved
		a.current = next
	}

	return nil, fmt.Errorf("%w: allocation of %d bytes exceeds arena capacity", zerr.ErrOutOfMemory, size)
}

// PushBytes is a convenience wrapper around Push that copies p into the
// returned arena-owned slice.
func (a *Arena) PushBytes(p []byte) ([]byte, error) {
	b, err := a.Push(len(p), 1)
	if err != nil {
		return nil, err
	}
	copy(b, p)
	return b, nil
}

// PushString is PushBytes for a string, returning the arena-owned bytes.
func (a *Arena) PushString(s string) ([]byte, error) {
	return a.PushBytes([]byte(s))
}

// GetPos returns the current global bump position, suitable for a later
// PopTo call. Positions are monotonically comparable across the whole chain.
func (a *Arena) GetPos() int {
	return a.current.basePos + a.current.pos
}

// PopTo rewinds the arena to a position previously returned by GetPos,
// retiring any tail arenas allocated since onto the free list.
func (a *Arena) PopTo(pos int) {
	for a.current != a.head && a.current.basePos >= pos {
		retired := a.current
		a.current = retired.prev
		retired.prev = nil
		retired.freeNext = a.freeLast
		a.freeLast = retired
		a.freeSize += retired.reserved
	}
	if pos >= a.current.basePos && pos < a.current.basePos+a.current.reserved {
		newPos := pos - a.current.basePos
		if newPos < HeaderSize {
			newPos = HeaderSize
		}
		a.current.pos = newPos
	}
}

// Clear resets the arena to its initial empty state, retiring every chained
// arena onto the free list.
func (a *Arena) Clear() {
	a.PopTo(HeaderSize)
}

// FreeCount reports how many retired arenas are sitting on the free list,
// for diagnostics and tests.
func (a *Arena) FreeCount() int {
	n := 0
	for f := a.freeLast; f != nil; f = f.freeNext {
		n++
	}
	return n
}

// FreeSize reports the total reserved size of every free-listed arena.
func (a *Arena) FreeSize() int {
	return a.freeSize
}

// Checkpoint is a scoped acquisition: Scratch captures a position, End
// rewinds to it. It is safe to call End exactly once, on every exit path
// including error returns.
type Checkpoint struct {
	a   *Arena
	pos int
}

// Scratch captures the current position for a later End.
func (a *Arena) Scratch() *Checkpoint {
	return &Checkpoint{a: a, pos: a.GetPos()}
}

// End rewinds the arena to the position captured by Scratch.
func (c *Checkpoint) End() {
	c.a.PopTo(c.pos)
}

// Resize is unsupported: the arena never frees or grows an individual
// allocation. It always fails.
func (a *Arena) Resize(_ []byte, _ int) ([]byte, error) {
	return nil, fmt.Errorf("%w: arena allocations cannot be resized", zerr.ErrOutOfMemory)
}

// Release tears down every arena reachable from this handle: the active
// chain, the free list, and finally the head. The handle must not be used
// afterwards.
func (a *Arena) Release() error {
	if a.released {
		return nil
	}
	a.released = true

	var firstErr error
	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for n := a.current; n != nil && n != a.head; {
		prev := n.prev
		note(releasePages(n.mem))
		n = prev
	}
	for n := a.freeLast; n != nil; {
		next := n.freeNext
		note(releasePages(n.mem))
		n = next
	}
	note(releasePages(a.head.mem))
	return firstErr
}
