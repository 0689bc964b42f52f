// Package alloc implements the page's free-list allocator: a
// minimalist first-fit allocator living in a fixed header at the
// start of the shared page, backing the aloc/dealoc RPCs.
//
// Layout: the page header (offsets [0, HeaderSize)) holds two W-sized
// slots, RootPtrOffset (the root pointer set_root writes) and
// freeHeadOffset (the free list head, an offset into the page or 0
// for "none"). The allocatable arena follows at HeaderSize.
//
// Every block — free or allocated — starts with a single W-sized size
// field holding its body size in bytes (a multiple of W, excluding
// the size field itself). A free block additionally treats the first
// W bytes of its body as a next_free pointer; an allocated block's
// body is entirely the caller's payload. Allocator mutations are only
// ever safe while the caller holds the page's lock semaphore.
package alloc

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/z71200/runtime/internal/tagword"
)

const (
	// RootPtrOffset is the page-relative offset of the root pointer
	// slot set_root writes and the Layout Pass reads from.
	RootPtrOffset = 0
	freeHeadOffset = tagword.W
	// HeaderSize is the byte size of the fixed page header; the
	// allocatable arena begins immediately after it.
	HeaderSize = 2 * tagword.W
	// splitThreshold: a block is only split if doing so leaves a
	// remainder big enough to host its own size+next_free prefix plus
	// at least one spare word.
	splitThreshold = 3 * tagword.W
)

// ErrOutOfMemory is returned by Alloc when no free block fits.
var ErrOutOfMemory = errors.New("alloc: no block large enough")

// ErrCorrupt indicates the allocator header or a block size field
// failed a bounds check; callers treat this as a fatal condition.
type ErrCorrupt struct{ Reason string }

func (e *ErrCorrupt) Error() string { return fmt.Sprintf("alloc: corrupt page: %s", e.Reason) }

// Allocator operates in place on a shared page's bytes.
type Allocator struct {
	page []byte
}

// New wraps page for allocation. It does not initialize the header;
// call Init on a freshly created page before first use.
func New(page []byte) *Allocator { return &Allocator{page: page} }

// Init lays out a single free block spanning the entire arena. Call
// once, when a page is first created.
func (a *Allocator) Init() error {
	if len(a.page) < HeaderSize+splitThreshold {
		return &ErrCorrupt{Reason: "page too small for allocator header and one block"}
	}
	putWord(a.page, RootPtrOffset, 0)
	arenaSize := uint64(len(a.page) - HeaderSize - tagword.W)
	blockOff := uint64(HeaderSize)
	putWord(a.page, blockOff, arenaSize)
	putWord(a.page, blockOff+tagword.W, 0) // next_free = none
	putWord(a.page, freeHeadOffset, blockOff)
	return nil
}

func (a *Allocator) readWord(off uint64) (uint64, error) {
	if off+tagword.W > uint64(len(a.page)) {
		return 0, &ErrCorrupt{Reason: "read past page end"}
	}
	return binary.LittleEndian.Uint64(a.page[off : off+tagword.W]), nil
}

func putWord(page []byte, off uint64, v uint64) {
	binary.LittleEndian.PutUint64(page[off:off+tagword.W], v)
}

func (a *Allocator) freeHead() (uint64, error)  { return a.readWord(freeHeadOffset) }
func (a *Allocator) setFreeHead(off uint64) error {
	if freeHeadOffset+tagword.W > uint64(len(a.page)) {
		return &ErrCorrupt{Reason: "free head slot out of range"}
	}
	putWord(a.page, freeHeadOffset, off)
	return nil
}

func (a *Allocator) blockSize(blockOff uint64) (uint64, error) { return a.readWord(blockOff) }
func (a *Allocator) nextFree(blockOff uint64) (uint64, error) {
	return a.readWord(blockOff + tagword.W)
}

// RootPtr returns the root pointer set_root last wrote, or 0 if unset.
func (a *Allocator) RootPtr() (uint64, error) { return a.readWord(RootPtrOffset) }

// SetRootPtr implements the set_root RPC.
func (a *Allocator) SetRootPtr(ptr uint64) error {
	if RootPtrOffset+tagword.W > uint64(len(a.page)) {
		return &ErrCorrupt{Reason: "root ptr slot out of range"}
	}
	putWord(a.page, RootPtrOffset, ptr)
	return nil
}

// roundUpW rounds n up to the next multiple of W, the allocator's
// sizing contract for aloc requests.
func roundUpW(n uint64) uint64 {
	if r := n % tagword.W; r != 0 {
		n += tagword.W - r
	}
	return n
}

// Alloc implements aloc(n): first-fit scan of the free list, splitting
// the chosen block if the remainder is big enough to host another
// block header, and returns the offset of the payload (the first byte
// after the block's size field).
func (a *Allocator) Alloc(n uint64) (uint64, error) {
	n = roundUpW(n)

	var prevOff uint64
	hasPrev := false
	cur, err := a.freeHead()
	if err != nil {
		return 0, err
	}

	for cur != 0 {
		size, err := a.blockSize(cur)
		if err != nil {
			return 0, err
		}
		next, err := a.nextFree(cur)
		if err != nil {
			return 0, err
		}

		if size >= n {
			if size >= n+splitThreshold {
				if err := a.unlink(prevOff, hasPrev, cur, next); err != nil {
					return 0, err
				}
				newBlockOff := cur + tagword.W + n
				newSize := size - n - tagword.W
				putWord(a.page, cur, n)
				putWord(a.page, newBlockOff, newSize)
				if err := a.pushFree(newBlockOff); err != nil {
					return 0, err
				}
			} else {
				if err := a.unlink(prevOff, hasPrev, cur, next); err != nil {
					return 0, err
				}
			}
			return cur + tagword.W, nil
		}

		prevOff, hasPrev = cur, true
		cur = next
	}
	return 0, ErrOutOfMemory
}

func (a *Allocator) unlink(prevOff uint64, hasPrev bool, cur, next uint64) error {
	if hasPrev {
		putWord(a.page, prevOff+tagword.W, next)
		return nil
	}
	return a.setFreeHead(next)
}

func (a *Allocator) pushFree(blockOff uint64) error {
	head, err := a.freeHead()
	if err != nil {
		return err
	}
	putWord(a.page, blockOff+tagword.W, head)
	return a.setFreeHead(blockOff)
}

// Dealoc implements dealoc(ptr): pushes the block onto the free
// list and coalesces with any physically adjacent free neighbor.
func (a *Allocator) Dealoc(ptr uint64) error {
	if ptr < HeaderSize+tagword.W || ptr > uint64(len(a.page)) {
		return &ErrCorrupt{Reason: "dealoc: pointer out of arena range"}
	}
	blockOff := ptr - tagword.W
	size, err := a.blockSize(blockOff)
	if err != nil {
		return err
	}

	blockOff, size, err = a.coalesceNext(blockOff, size)
	if err != nil {
		return err
	}
	blockOff, size, err = a.coalescePrev(blockOff, size)
	if err != nil {
		return err
	}

	putWord(a.page, blockOff, size)
	return a.pushFree(blockOff)
}

// coalesceNext merges blockOff's block with its immediate physical
// successor if that successor is currently in the free list.
func (a *Allocator) coalesceNext(blockOff, size uint64) (uint64, uint64, error) {
	successor := blockOff + tagword.W + size
	found, prevOff, hasPrev, err := a.findInFreeList(successor)
	if err != nil || !found {
		return blockOff, size, err
	}
	succSize, err := a.blockSize(successor)
	if err != nil {
		return blockOff, size, err
	}
	next, err := a.nextFree(successor)
	if err != nil {
		return blockOff, size, err
	}
	if err := a.unlink(prevOff, hasPrev, successor, next); err != nil {
		return blockOff, size, err
	}
	return blockOff, size + tagword.W + succSize, nil
}

// coalescePrev merges blockOff's block with its immediate physical
// predecessor if that predecessor is currently in the free list. The
// free list has no back-links, so this walks it once to find a block
// whose body ends exactly where blockOff begins.
func (a *Allocator) coalescePrev(blockOff, size uint64) (uint64, uint64, error) {
	var prevOff uint64
	hasPrev := false
	cur, err := a.freeHead()
	if err != nil {
		return blockOff, size, err
	}
	for cur != 0 {
		curSize, err := a.blockSize(cur)
		if err != nil {
			return blockOff, size, err
		}
		next, err := a.nextFree(cur)
		if err != nil {
			return blockOff, size, err
		}
		if cur+tagword.W+curSize == blockOff {
			if err := a.unlink(prevOff, hasPrev, cur, next); err != nil {
				return blockOff, size, err
			}
			return cur, curSize + tagword.W + size, nil
		}
		prevOff, hasPrev = cur, true
		cur = next
	}
	return blockOff, size, nil
}

// findInFreeList reports whether target is currently a free block's
// offset, and if so the offset of its predecessor in the list.
func (a *Allocator) findInFreeList(target uint64) (found bool, prevOff uint64, hasPrev bool, err error) {
	cur, err := a.freeHead()
	if err != nil {
		return false, 0, false, err
	}
	for cur != 0 {
		if cur == target {
			return true, prevOff, hasPrev, nil
		}
		next, err := a.nextFree(cur)
		if err != nil {
			return false, 0, false, err
		}
		prevOff, hasPrev = cur, true
		cur = next
	}
	return false, 0, false, nil
}
