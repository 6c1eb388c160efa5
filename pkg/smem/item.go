package smem

import (
	"github.com/gerald0057/small-mem/pkg/xunsafe"
)

// Tag word layout: the owner's address with the used bit overlaid on bit 0.
// Heap descriptors are word aligned, so the bit is always available.
const (
	statusMask uintptr = 1 << 0
	ownerMask          = ^statusMask
)

// item is the header that prefixes every block in the arena, the sentinel
// included. Blocks form a doubly linked list in address order, threaded by
// byte offsets from the arena start.
type item struct {
	pool uintptr // owning heap address | used bit
	next int     // offset of the next block header
	prev int     // offset of the previous block header
}

func (h *Heap) tagUsed() uintptr {
	return uintptr(xunsafe.AddrOf(h))&ownerMask | 1
}

func (h *Heap) tagFree() uintptr {
	return uintptr(xunsafe.AddrOf(h)) & ownerMask
}

func (m *item) used() bool {
	return m.pool&statusMask != 0
}

// heap recovers the owning heap from the tag word.
func (m *item) heap() *Heap {
	return xunsafe.Addr[Heap](m.pool & ownerMask).AssertValid()
}

// payload returns the first usable byte of the block.
func (m *item) payload() *byte {
	return xunsafe.ByteAdd[byte](m, sizeofItem)
}

// itemAt returns the block header at the given arena offset.
func (h *Heap) itemAt(off int) *item {
	return xunsafe.ByteAdd[item](h.heap, off)
}

// offsetOf returns the arena offset of a block header.
func (h *Heap) offsetOf(m *item) int {
	return xunsafe.ByteSub(m, h.heap)
}

// size returns the payload size of a block.
func (h *Heap) size(m *item) int {
	return m.next - h.offsetOf(m) - sizeofItem
}

// payloadItem recovers the header from a payload pointer. This is the one
// place a raw payload pointer is turned back into heap metadata.
func payloadItem(p *byte) *item {
	return xunsafe.ByteAdd[item](p, -sizeofItem)
}
