package smem

import (
	"github.com/gerald0057/small-mem/internal/debug"
	"github.com/gerald0057/small-mem/pkg/xunsafe"
	"github.com/gerald0057/small-mem/pkg/xunsafe/layout"
)

// Realloc resizes the block behind p to newsize bytes.
//
// A nil p allocates; a zero newsize frees and returns nil. Shrinking by
// enough to carve off a viable free block happens in place; anything else
// allocates a new block, copies the overlapping prefix, and frees the
// original. When the new allocation fails, nil is returned and the original
// block is left untouched.
func (h *Heap) Realloc(p *byte, newsize int) *byte {
	newsize = layout.RoundUp(newsize, Align)

	if newsize > h.sizeAligned {
		h.log("realloc", "no memory for %d bytes", newsize)
		return nil
	}

	if newsize == 0 {
		Free(p)
		return nil
	}

	if p == nil {
		return h.Alloc(newsize)
	}

	debug.Assert(uintptr(xunsafe.AddrOf(p))%uintptr(Align) == 0, "reallocating unaligned payload %p", p)
	debug.Assert(xunsafe.AddrOf(p) >= xunsafe.AddrOf(h.heap) &&
		xunsafe.AddrOf(p) < xunsafe.AddrOf(xunsafe.Cast[byte](h.end)),
		"payload %p outside the arena", p)

	mem := payloadItem(p)
	ptr := h.offsetOf(mem)
	size := mem.next - ptr - sizeofItem

	if size == newsize {
		return p
	}

	if newsize+sizeofItem+minPayload < size {
		// Shrink in place: split off the tail as a new free block and let
		// it merge with a free successor.
		h.used -= size - newsize

		ptr2 := ptr + sizeofItem + newsize

		mem2 := h.itemAt(ptr2)
		mem2.pool = h.tagFree()
		mem2.next = mem.next
		mem2.prev = ptr

		mem.next = ptr2

		if mem2.next != h.sizeAligned+sizeofItem {
			h.itemAt(mem2.next).prev = ptr2
		}

		if xunsafe.AddrOf(mem2) < xunsafe.AddrOf(h.lfree) {
			h.lfree = mem2
		}

		h.plugHoles(mem2)
		h.log("realloc", "%p shrunk to %d bytes", p, newsize)

		return p
	}

	// Growing, or shrinking by too little to split: move the block.
	nmem := h.Alloc(newsize)
	if nmem != nil {
		xunsafe.Copy(nmem, p, min(size, newsize))
		Free(p)
	}

	return nmem
}
