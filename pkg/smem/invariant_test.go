package smem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gerald0057/small-mem/pkg/xunsafe"
)

// checkHeap walks the block chain and verifies every structural invariant
// the heap promises to hold between operations.
func checkHeap(t testing.TB, h *Heap) {
	t.Helper()

	used := 0
	prevFree := false
	lowestFree := -1

	for off := 0; ; {
		mem := h.itemAt(off)
		if mem == h.end {
			break
		}

		require.Greater(t, mem.next, off, "chain must ascend")
		require.LessOrEqual(t, mem.next, h.sizeAligned+sizeofItem, "chain must stay inside the arena")

		if next := h.itemAt(mem.next); next != h.end {
			require.Equal(t, off, next.prev, "successor must point back at %d", off)
		}

		require.Same(t, h, mem.heap(), "block at %d must carry its owner", off)

		if mem.used() {
			used += mem.next - off
			prevFree = false
		} else {
			require.False(t, prevFree, "adjacent free blocks at %d", off)
			prevFree = true
			if lowestFree < 0 {
				lowestFree = off
			}
		}

		off = mem.next
	}

	require.True(t, h.end.used(), "sentinel must stay used")
	require.Equal(t, used, h.used, "used bytes must match a chain recomputation")
	require.GreaterOrEqual(t, h.peak, h.used, "peak must cover used")

	if lowestFree < 0 {
		require.Same(t, h.end, h.lfree, "hint must rest on the sentinel when nothing is free")
	} else {
		require.Equal(t, lowestFree, h.offsetOf(h.lfree), "hint must sit on the lowest free block")
		require.False(t, h.lfree.used(), "hint must land on a free block")
	}
}

func TestInitPlacement(t *testing.T) {
	region := make([]byte, 512)

	// Start the heap on a misaligned byte; Init must align both ends.
	h, err := Init(region[1 : len(region)-3])
	require.NoError(t, err)
	checkHeap(t, h)

	p := h.Alloc(40)
	require.NotNil(t, p)
	require.Zero(t, uintptr(xunsafe.AddrOf(p))%uintptr(Align))
	checkHeap(t, h)
}

func TestAllocAccounting(t *testing.T) {
	h, err := Init(make([]byte, 1024))
	require.NoError(t, err)

	// A one-byte request is promoted to the minimum payload.
	p := h.Alloc(1)
	require.NotNil(t, p)
	require.Equal(t, minPayloadAligned, h.size(payloadItem(p)))
	require.Equal(t, sizeofItem+minPayloadAligned, h.used)
	require.Equal(t, h.used, h.peak)
	checkHeap(t, h)

	// An aligned request is served exactly.
	q := h.Alloc(64)
	require.NotNil(t, q)
	require.Equal(t, 64, h.size(payloadItem(q)))
	checkHeap(t, h)

	Free(p)
	Free(q)
	require.Zero(t, h.used)
	require.Equal(t, sizeofItem+minPayloadAligned+sizeofItem+64, h.peak)
	checkHeap(t, h)
}

func TestTagEncoding(t *testing.T) {
	h, err := Init(make([]byte, 512))
	require.NoError(t, err)

	mem := h.itemAt(0)
	require.False(t, mem.used())
	require.Same(t, h, mem.heap())

	mem.pool = h.tagUsed()
	require.True(t, mem.used())
	require.Same(t, h, mem.heap())

	mem.pool = h.tagFree()
	require.False(t, mem.used())
	require.Same(t, h, mem.heap())
}

func TestPayloadRoundTrip(t *testing.T) {
	h, err := Init(make([]byte, 512))
	require.NoError(t, err)

	p := h.Alloc(32)
	require.NotNil(t, p)

	mem := payloadItem(p)
	require.Same(t, p, mem.payload())
	require.True(t, mem.used())
}

func TestHeapInvariants(t *testing.T) {
	h, err := Init(make([]byte, 2048))
	require.NoError(t, err)
	checkHeap(t, h)

	total := h.MaxFree()

	alloc := func(n int) *byte {
		t.Helper()
		p := h.Alloc(n)
		checkHeap(t, h)
		return p
	}
	free := func(p *byte) {
		t.Helper()
		Free(p)
		checkHeap(t, h)
	}

	a := alloc(1)
	b := alloc(16)
	c := alloc(100)
	d := alloc(333)
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, c)
	require.NotNil(t, d)

	// Punch a hole, then refill it.
	free(b)
	b = alloc(8)
	require.NotNil(t, b)

	// Shrink in place, grow by copy.
	d2 := h.Realloc(d, 40)
	checkHeap(t, h)
	require.Same(t, d, d2)

	c2 := h.Realloc(c, 500)
	checkHeap(t, h)
	require.NotNil(t, c2)
	require.NotSame(t, c, c2)

	free(a)
	free(b)
	free(c2)
	free(d2)

	require.Zero(t, h.used)
	require.Equal(t, total, h.MaxFree())
	require.Same(t, h.itemAt(0), h.lfree)
}
