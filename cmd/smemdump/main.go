// Command smemdump builds a heap in a tiny region, runs an allocate/free
// sequence through it, and hex-dumps the region after every step.
package main

import (
	"fmt"
	"os"

	"github.com/bytedance/gopkg/lang/dirtmake"

	"github.com/gerald0057/small-mem/pkg/smem"
	"github.com/gerald0057/small-mem/pkg/xunsafe"
)

const regionSize = 512

func main() {
	region := dirtmake.Bytes(regionSize, regionSize)
	clear(region)

	heap, err := smem.Init(region)
	if err != nil {
		fmt.Fprintln(os.Stderr, "smemdump:", err)
		os.Exit(1)
	}

	dump(heap, "init")

	bufa := heap.Alloc(20)
	memset(bufa, 0x0a, 20)
	dump(heap, "alloc a[20]")

	bufb := heap.Alloc(24)
	memset(bufb, 0x0b, 24)
	dump(heap, "alloc b[24]")

	smem.Free(bufa)
	bufc := heap.Alloc(18)
	memset(bufc, 0x0c, 18)
	dump(heap, "free a, alloc c[18]")

	smem.Free(bufb)
	smem.Free(bufc)
	dump(heap, "drained")
}

func dump(h *smem.Heap, step string) {
	fmt.Printf("-- %s: used %d, peak %d, max free %d\n", step, h.Used(), h.Peak(), h.MaxFree())
	if err := h.Dump(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "smemdump:", err)
		os.Exit(1)
	}
	fmt.Println()
}

func memset(p *byte, v byte, n int) {
	s := xunsafe.Slice(p, n)
	for i := range s {
		s[i] = v
	}
}
