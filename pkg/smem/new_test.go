package smem_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gerald0057/small-mem/pkg/smem"
)

func TestNew(t *testing.T) {
	Convey("Given a fresh heap", t, func() {
		h := mustInit()
		total := h.MaxFree()

		type point struct{ X, Y int64 }

		Convey("When allocating a typed value", func() {
			p := smem.New(h, point{X: 42, Y: -1})
			So(p, ShouldNotBeNil)
			So(p.X, ShouldEqual, 42)
			So(p.Y, ShouldEqual, -1)

			Convey("Then releasing it restores the arena", func() {
				smem.Release(p)
				So(h.Used(), ShouldEqual, 0)
				So(h.MaxFree(), ShouldEqual, total)
			})
		})

		Convey("When the heap cannot fit the value", func() {
			So(h.Alloc(total), ShouldNotBeNil)
			So(smem.New(h, point{}), ShouldBeNil)
		})
	})
}
