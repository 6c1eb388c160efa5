package smem

// Used returns the bytes currently allocated, block headers included.
func (h *Heap) Used() int { return h.used }

// Peak returns the high-water mark of [Heap.Used].
func (h *Heap) Peak() int { return h.peak }

// Total returns the arena size available to blocks and their headers.
func (h *Heap) Total() int { return h.total }

// Size returns the aligned arena size: the payload of the single free block
// a fresh heap starts with.
func (h *Heap) Size() int { return h.sizeAligned }

// MaxFree walks the block chain and returns the payload size of the largest
// free block, or zero when no block is free.
func (h *Heap) MaxFree() int {
	best := 0

	for mem := h.itemAt(0); mem != h.end; mem = h.itemAt(mem.next) {
		if mem.used() {
			continue
		}
		if n := h.size(mem); n > best {
			best = n
		}
	}

	return best
}
