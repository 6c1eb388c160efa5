package smem

import (
	"encoding/hex"
	"io"

	"github.com/gerald0057/small-mem/pkg/xunsafe"
)

// Dump writes a hex+ASCII dump of the managed region to w, descriptor and
// sentinel included, so the in-band structure can be inspected.
func (h *Heap) Dump(w io.Writer) error {
	start := xunsafe.Cast[byte](h)
	n := xunsafe.ByteSub(h.end, start) + sizeofItem

	d := hex.Dumper(w)
	if _, err := d.Write(xunsafe.Slice(start, n)); err != nil {
		return err
	}

	return d.Close()
}
