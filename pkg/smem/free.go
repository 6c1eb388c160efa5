package smem

import (
	"github.com/gerald0057/small-mem/internal/debug"
	"github.com/gerald0057/small-mem/pkg/xunsafe"
)

// Free releases a payload previously returned by [Heap.Alloc] or
// [Heap.Realloc]. Freeing nil is a no-op.
//
// No heap argument is needed: the block header carries its owner's address,
// so call sites only have to hold the payload pointer. Passing anything that
// is not a live payload of some heap is a caller bug; it is caught by
// assertions under the debug tag and undefined otherwise.
func Free(p *byte) {
	if p == nil {
		return
	}

	debug.Assert(uintptr(xunsafe.AddrOf(p))%uintptr(Align) == 0, "freeing unaligned payload %p", p)

	mem := payloadItem(p)
	h := mem.heap()

	debug.Assert(h != nil, "payload %p has no owning heap", p)
	debug.Assert(mem.used(), "double free of %p", p)
	debug.Assert(xunsafe.AddrOf(p) >= xunsafe.AddrOf(h.heap) &&
		xunsafe.AddrOf(p) < xunsafe.AddrOf(xunsafe.Cast[byte](h.end)),
		"payload %p outside the arena", p)
	debug.Assert(h.itemAt(mem.next).heap() == h, "successor of %p belongs to another heap", p)

	mem.pool = h.tagFree()

	if xunsafe.AddrOf(mem) < xunsafe.AddrOf(h.lfree) {
		// The newly freed block is now the lowest.
		h.lfree = mem
	}

	h.used -= mem.next - h.offsetOf(mem)
	h.log("free", "%p, size %d", p, mem.next-h.offsetOf(mem))

	h.plugHoles(mem)
}

// Release frees a value allocated with [New].
func Release[T any](p *T) {
	Free(xunsafe.Cast[byte](p))
}

// plugHoles merges mem with its free neighbors so that no two adjacent free
// blocks survive.
func (h *Heap) plugHoles(mem *item) {
	debug.Assert(xunsafe.AddrOf(mem) >= xunsafe.AddrOf(xunsafe.Cast[item](h.heap)), "block below the arena")
	debug.Assert(xunsafe.AddrOf(mem) < xunsafe.AddrOf(h.end), "block beyond the arena")

	// Plug hole forward.
	nmem := h.itemAt(mem.next)
	if mem != nmem && !nmem.used() && nmem != h.end {
		// mem's successor is free and is not the sentinel: absorb it.
		if h.lfree == nmem {
			h.lfree = mem
		}
		nmem.pool = 0
		mem.next = nmem.next
		h.itemAt(nmem.next).prev = h.offsetOf(mem)
	}

	// Plug hole backward.
	pmem := h.itemAt(mem.prev)
	if pmem != mem && !pmem.used() {
		// mem's predecessor is free: fold mem into it.
		if h.lfree == mem {
			h.lfree = pmem
		}
		mem.pool = 0
		pmem.next = mem.next
		h.itemAt(mem.next).prev = h.offsetOf(pmem)
	}
}
