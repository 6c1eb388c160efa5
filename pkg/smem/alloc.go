package smem

import (
	"github.com/gerald0057/small-mem/internal/debug"
	"github.com/gerald0057/small-mem/pkg/xunsafe"
	"github.com/gerald0057/small-mem/pkg/xunsafe/layout"
)

// Alloc allocates a block of at least size bytes and returns its payload
// pointer, or nil if size is zero, exceeds the arena, or no free block fits.
//
// The payload is aligned to [Align] and spans at least the aligned request,
// never less than the heap's minimum payload. Its contents are whatever the
// block held before.
func (h *Heap) Alloc(size int) *byte {
	if size == 0 {
		return nil
	}

	size = layout.RoundUp(size, Align)

	// Every block must be able to turn back into a viable free block.
	if size < minPayloadAligned {
		size = minPayloadAligned
	}

	if size > h.sizeAligned {
		h.log("alloc", "no memory for %d bytes", size)
		return nil
	}

	// First fit, starting at the lowest free block. Blocks past
	// sizeAligned-size cannot fit even when free.
	for ptr := h.offsetOf(h.lfree); ptr <= h.sizeAligned-size; ptr = h.itemAt(ptr).next {
		mem := h.itemAt(ptr)

		if mem.used() || h.size(mem) < size {
			continue
		}

		if h.size(mem) >= size+sizeofItem+minPayloadAligned {
			// The remainder can hold a header plus a minimum payload:
			// split it off as a new free block between mem and its next.
			ptr2 := ptr + sizeofItem + size

			mem2 := h.itemAt(ptr2)
			mem2.pool = h.tagFree()
			mem2.next = mem.next
			mem2.prev = ptr

			mem.next = ptr2

			if mem2.next != h.sizeAligned+sizeofItem {
				h.itemAt(mem2.next).prev = ptr2
			}

			h.used += size + sizeofItem
		} else {
			// A remainder too small to stand alone would be unreachable
			// until its neighbor is freed; hand the whole block out.
			h.used += mem.next - ptr
		}
		if h.used > h.peak {
			h.peak = h.used
		}

		mem.pool = h.tagUsed()

		if mem == h.lfree {
			// Advance the hint past used blocks to the next free one.
			for h.lfree.used() && h.lfree != h.end {
				h.lfree = h.itemAt(h.lfree.next)
			}
			debug.Assert(h.lfree == h.end || !h.lfree.used(), "lowest-free hint must land on a free block")
		}

		p := mem.payload()
		debug.Assert(uintptr(xunsafe.AddrOf(p))%uintptr(Align) == 0, "payload %p is unaligned", p)
		h.log("alloc", "%p, size %d", p, mem.next-ptr)

		return p
	}

	h.log("alloc", "no block fits %d bytes", size)

	return nil
}

// New allocates a value of type T on the heap and initializes it.
//
// Returns nil when the heap cannot fit the value. Panics if T needs more
// than word alignment.
func New[T any](h *Heap, value T) *T {
	l := layout.Of[T]()
	if l.Align > Align {
		panic("smem: over-aligned object")
	}

	p := xunsafe.Cast[T](h.Alloc(l.Size))
	if p == nil {
		return nil
	}
	*p = value

	return p
}
