// Package smem implements a small-heap allocator over a caller-supplied
// contiguous byte region.
//
// The heap places its own descriptor at the low end of the region and
// partitions the rest into blocks, each prefixed by a three-word header that
// carries the owning heap's address, a used bit, and offsets to its
// neighbors in address order. A permanently-used sentinel block closes the
// high end. Allocation is first-fit from a lowest-free hint; freed blocks
// are eagerly merged with free neighbors.
//
// The allocator is intended for environments that supply their own backing
// memory and want a predictable, introspectable heap: an allocation only
// changes address when [Heap.Realloc] has to move it, every operation is
// O(blocks) at worst, and [Heap.Dump] shows the exact
// byte-level layout.
//
// A heap is strictly single-threaded. Callers that share one across
// goroutines must serialize every operation themselves.
//
//	region := make([]byte, 4096)
//
//	heap, err := smem.Init(region)
//	if err != nil {
//		// region too small
//	}
//
//	p := heap.Alloc(64)
//	q := heap.Realloc(p, 128)
//	smem.Free(q)
package smem

import (
	"errors"
	"unsafe"

	"github.com/gerald0057/small-mem/internal/debug"
	"github.com/gerald0057/small-mem/pkg/xunsafe"
)

// Align is the alignment of every payload returned by the heap.
//
// Word alignment keeps the low bit of the owner tag free and lets the
// descriptor and block headers live in-band.
const Align = int(unsafe.Sizeof(uintptr(0)))

const (
	// sizeofItem is the in-band block header size, rounded up to Align.
	sizeofItem = (int(unsafe.Sizeof(item{})) + Align - 1) &^ (Align - 1)

	sizeofHeap = int(unsafe.Sizeof(Heap{}))

	// minPayload is the smallest payload a block may carry. A freed block
	// must be able to hold a header's worth of bookkeeping in its span.
	minPayload        = int(unsafe.Sizeof(uintptr(0)) + 2*unsafe.Sizeof(uintptr(0)))
	minPayloadAligned = (minPayload + Align - 1) &^ (Align - 1)
)

// ErrRegionTooSmall is returned by [Init] when the region cannot hold the
// descriptor, two block headers and any payload.
var ErrRegionTooSmall = errors.New("smem: region too small for a heap")

// Heap is the descriptor of one managed region.
//
// It lives inside the region it manages, at the aligned low end, so a block
// header can refer back to it by address alone.
type Heap struct {
	_ xunsafe.NoCopy

	used int // bytes in used blocks, headers included
	peak int // high-water mark of used
	total int

	heap        *byte // first byte of the arena
	end         *item // terminal sentinel
	lfree       *item // free block at or before the lowest-addressed free block
	sizeAligned int   // arena bytes available to blocks, minus the two fixed headers
}

// Init takes ownership of region and builds a heap in it.
//
// The descriptor is placed at the aligned start of the region; the remainder
// becomes a single free block closed off by the terminal sentinel. Returns
// [ErrRegionTooSmall] when the region cannot hold all of that plus any
// payload.
//
// The caller must not touch region directly afterwards, except through
// payload pointers returned by [Heap.Alloc] and [Heap.Realloc].
func Init(region []byte) (*Heap, error) {
	base := xunsafe.AddrOf(unsafe.SliceData(region)).RoundUpTo(Align)
	staaddr := base.ByteAdd(sizeofHeap)
	beginAlign := staaddr.RoundUpTo(Align)
	endAlign := xunsafe.EndOf(region).RoundDownTo(Align)

	if int(endAlign) <= 2*sizeofItem || endAlign.ByteAdd(-2*sizeofItem) <= staaddr {
		return nil, ErrRegionTooSmall
	}

	memSize := endAlign.Sub(beginAlign) - 2*sizeofItem

	h := xunsafe.Cast[Heap](base.AssertValid())
	xunsafe.Clear(xunsafe.Cast[byte](h), sizeofHeap)
	h.total = memSize
	h.sizeAligned = memSize
	h.heap = beginAlign.AssertValid()

	// The whole arena starts out as one free block.
	mem := h.itemAt(0)
	mem.pool = h.tagFree()
	mem.next = memSize + sizeofItem
	mem.prev = 0

	// The sentinel is permanently used and refers to itself, which is the
	// "no successor to patch" test in split and coalesce.
	h.end = h.itemAt(memSize + sizeofItem)
	h.end.pool = h.tagUsed()
	h.end.next = memSize + sizeofItem
	h.end.prev = memSize + sizeofItem

	h.lfree = mem

	h.log("init", "heap %v, size %d", xunsafe.AddrOf(h.heap), h.sizeAligned)

	return h, nil
}

func (h *Heap) log(op, format string, args ...any) {
	debug.Log([]any{"%p used:%d/%d", h, h.used, h.sizeAligned}, op, format, args...)
}
