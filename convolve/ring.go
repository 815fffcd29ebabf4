package convolve

import (
	"fmt"

	"pixproc/pixmap"
)

// ring holds the most recent filtered rows until the source rows they were
// computed from can no longer be read by later output rows.
type ring struct {
	slots   []byte
	depth   int
	lookup  int // rows above the current one still read as filter input
	img     []byte
	d       pixmap.Descriptor
	written int // rows computed so far
	flushed int // rows copied back to img so far
}

func newRing(scratch []byte, img []byte, d pixmap.Descriptor, anchorY int) *ring {
	return &ring{
		slots:  scratch,
		depth:  anchorY + 1,
		lookup: anchorY,
		img:    img,
		d:      d,
	}
}

// next returns the slot receiving output row y. Rows are written in order and
// a slot is reused only once its previous row has been flushed.
func (r *ring) next(y int) []byte {
	if y != r.written {
		panic(fmt.Sprintf("convolve: ring wrote row %d, expected %d", y, r.written))
	}
	if y-r.depth >= r.flushed {
		panic(fmt.Sprintf("convolve: ring slot for row %d still holds unflushed row %d", y, y-r.depth))
	}
	r.written++
	off := (y % r.depth) * r.d.Stride
	return r.slots[off : off+r.d.RowBytes() : off+r.d.RowBytes()]
}

// flush copies output row y back into the image. A row may only be flushed
// once no remaining output row reads it as input.
func (r *ring) flush(y int) {
	if y != r.flushed {
		panic(fmt.Sprintf("convolve: ring flushed row %d, expected %d", y, r.flushed))
	}
	if y >= r.written || (y+r.lookup >= r.written && r.written < r.d.Height) {
		panic(fmt.Sprintf("convolve: ring flushed row %d while still needed as input", y))
	}
	off := (y % r.depth) * r.d.Stride
	copy(r.d.Row(r.img, y), r.slots[off:off+r.d.RowBytes()])
	r.flushed++
}

// drain flushes every remaining row in order.
func (r *ring) drain() {
	for r.flushed < r.written {
		r.flush(r.flushed)
	}
}
