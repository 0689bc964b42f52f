package alloc

import "testing"

func newPage(t *testing.T, size int) (*Allocator, []byte) {
	t.Helper()
	page := make([]byte, size)
	a := New(page)
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return a, page
}

func TestAllocRoundTrip(t *testing.T) {
	a, _ := newPage(t, 4096)

	ptr1, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("aloc ptr1: %v", err)
	}
	ptr2, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("aloc ptr2: %v", err)
	}
	if err := a.Dealoc(ptr1); err != nil {
		t.Fatalf("dealoc ptr1: %v", err)
	}
	ptr3, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("aloc ptr3: %v", err)
	}

	if ptr3 != ptr1 {
		t.Errorf("ptr3 = %d, want %d (first-fit reuse of ptr1's block)", ptr3, ptr1)
	}
	if ptr2 == ptr1 {
		t.Errorf("ptr2 aliases ptr1")
	}
}

func TestAllocRoundsUpToWordMultiple(t *testing.T) {
	a, _ := newPage(t, 4096)
	p1, err := a.Alloc(1)
	if err != nil {
		t.Fatalf("aloc(1): %v", err)
	}
	p2, err := a.Alloc(8)
	if err != nil {
		t.Fatalf("aloc(8): %v", err)
	}
	if p2-p1 != 16 {
		t.Fatalf("aloc(1) left a gap of %d bytes, want 16 (8-byte payload rounded up, plus the next block's 8-byte size field)", p2-p1)
	}
}

func TestAllocNeverAliasesLiveBlocks(t *testing.T) {
	a, _ := newPage(t, 4096)
	seen := map[uint64]bool{}
	for i := 0; i < 20; i++ {
		ptr, err := a.Alloc(32)
		if err != nil {
			t.Fatalf("aloc #%d: %v", i, err)
		}
		if seen[ptr] {
			t.Fatalf("aloc returned a pointer already live: %d", ptr)
		}
		seen[ptr] = true
	}
}

func TestAllocOutOfMemory(t *testing.T) {
	a, page := newPage(t, HeaderSize+64)
	if _, err := a.Alloc(uint64(len(page))); err != ErrOutOfMemory {
		t.Fatalf("Alloc of more than the page: err = %v, want ErrOutOfMemory", err)
	}
}

// TestSplitThresholdExactFit covers the split threshold's boundary
// behavior: allocating the entire free block returns the block
// without splitting when the remainder would be smaller than 3*W.
func TestSplitThresholdExactFit(t *testing.T) {
	a, page := newPage(t, HeaderSize+64)
	arenaBody := uint64(len(page)) - HeaderSize - 8 // whole initial free block's body size

	// Ask for a size that leaves a remainder < 3*W: the allocator
	// must hand back the whole block rather than splitting a
	// too-small remainder off.
	n := arenaBody - 16 // remainder would be 16 bytes = 2*W < 3*W
	ptr, err := a.Alloc(n)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	head, err := a.freeHead()
	if err != nil {
		t.Fatalf("freeHead: %v", err)
	}
	if head != 0 {
		t.Fatalf("free list head = %d, want 0 (whole block consumed, no split)", head)
	}
	if ptr != HeaderSize+8 {
		t.Fatalf("ptr = %d, want %d", ptr, HeaderSize+8)
	}
}

func TestDeallocCoalescesAdjacentFreeBlocks(t *testing.T) {
	a, _ := newPage(t, 4096)

	p1, _ := a.Alloc(64)
	p2, _ := a.Alloc(64)
	p3, _ := a.Alloc(64)
	_ = p2

	if err := a.Dealoc(p1); err != nil {
		t.Fatalf("dealoc p1: %v", err)
	}
	if err := a.Dealoc(p2); err != nil {
		t.Fatalf("dealoc p2: %v", err)
	}

	// p1 and p2 are now one contiguous free run whose body is
	// 64 + 8 (p2's size field) + 64 = 136 bytes; an allocation that
	// needs more than either block alone, but fits their merge,
	// should reuse it from p1's position.
	ptr, err := a.Alloc(136)
	if err != nil {
		t.Fatalf("alloc after coalescing p1+p2: %v", err)
	}
	if ptr != p1 {
		t.Fatalf("alloc after coalescing p1+p2 = %d, want %d (the merged block)", ptr, p1)
	}
	_ = p3
}

func TestFreeBytesConservedAcrossAllocDealoc(t *testing.T) {
	a, page := newPage(t, 4096)

	freeBytes := func() uint64 {
		var total uint64
		cur, err := a.freeHead()
		if err != nil {
			t.Fatalf("freeHead: %v", err)
		}
		for cur != 0 {
			size, err := a.blockSize(cur)
			if err != nil {
				t.Fatalf("blockSize: %v", err)
			}
			total += size
			cur, err = a.nextFree(cur)
			if err != nil {
				t.Fatalf("nextFree: %v", err)
			}
		}
		return total
	}

	before := freeBytes()
	ptrs := make([]uint64, 5)
	for i := range ptrs {
		ptr, err := a.Alloc(48)
		if err != nil {
			t.Fatalf("alloc #%d: %v", i, err)
		}
		ptrs[i] = ptr
	}
	for _, ptr := range ptrs {
		if err := a.Dealoc(ptr); err != nil {
			t.Fatalf("dealoc: %v", err)
		}
	}
	after := freeBytes()
	if before != after {
		t.Fatalf("free bytes before = %d, after = %d", before, after)
	}
	_ = page
}
