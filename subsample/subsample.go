// Package subsample shrinks pixel buffers by area-weighted averaging.
//
// Every source pixel is a unit cell whose colour is shared between the one or
// two destination rows and columns it overlaps, in proportion to the overlap.
// Overlaps are integer percentages so results do not depend on floating point
// rounding.
package subsample

import (
	"fmt"

	"pixproc/pixmap"
)

// ScratchLen is the number of accumulators Bilinear needs for src.
func ScratchLen(src pixmap.Descriptor) int {
	return 2 * src.Width * src.Components
}

// span locates source cell pos among dstLen destination cells covering
// srcLen source cells. The cell belongs to destination cell d for pct percent
// of its size; when split the remainder belongs to d+1. last reports that the
// cell ends exactly on the far boundary of d.
func span(pos, srcLen, dstLen int) (d, pct int, split, last bool) {
	d = pos * dstLen / srcLen
	end := (pos + 1) * dstLen
	boundary := (d + 1) * srcLen
	if end <= boundary {
		return d, 100, false, end == boundary
	}
	return d, (boundary - pos*dstLen) * 100 / dstLen, true, false
}

type sampler struct {
	dst      []byte
	dd       pixmap.Descriptor
	sd       pixmap.Descriptor
	work     []uint64
	divisors []uint64
}

// Bilinear downsamples src into dst, which must be strictly smaller in both
// dimensions. scratch must hold ScratchLen(sd) values; a nil scratch is
// allocated by the call.
func Bilinear(dst []byte, dd pixmap.Descriptor, src []byte, sd pixmap.Descriptor, scratch []uint64) error {
	if err := sd.Check(src); err != nil {
		return err
	}
	if err := dd.Check(dst); err != nil {
		return err
	}
	switch {
	case sd.Components != dd.Components:
		return fmt.Errorf("%w: component mismatch: %d != %d", pixmap.ErrInvalidArgument, sd.Components, dd.Components)
	case dd.Width < 1 || dd.Height < 1 || dd.Width >= sd.Width || dd.Height >= sd.Height:
		return fmt.Errorf("%w: %dx%d to %dx%d is not a downscale",
			pixmap.ErrInvalidArgument, sd.Width, sd.Height, dd.Width, dd.Height)
	}

	size := ScratchLen(sd)
	switch {
	case scratch == nil:
		scratch = make([]uint64, size)
	case len(scratch) < size:
		return fmt.Errorf("%w: scratch too small: %d < %d", pixmap.ErrInvalidArgument, len(scratch), size)
	}

	half, rowLen := size/2, dd.RowBytes()
	s := sampler{
		dst:      dst,
		dd:       dd,
		sd:       sd,
		work:     scratch[:rowLen],
		divisors: scratch[half : half+rowLen],
	}
	clear(s.work)
	clear(s.divisors)

	for y := range sd.Height {
		row := sd.Row(src, y)
		dy, pct, split, last := span(y, sd.Height, dd.Height)
		s.accumulate(row, pct)
		if split {
			s.flush(dy)
			s.accumulate(row, 100-pct)
		} else if last {
			s.flush(dy)
		}
	}
	return nil
}

// accumulate adds a source row with vertical share vpct to the pending
// destination row.
func (s *sampler) accumulate(row []byte, vpct int) {
	n := s.sd.Components
	for x := range s.sd.Width {
		px := row[x*n : x*n+n]
		dx, hpct, split, _ := span(x, s.sd.Width, s.dd.Width)
		s.add(dx, px, uint64(vpct*hpct/100))
		if split {
			s.add(dx+1, px, uint64(vpct*(100-hpct)/100))
		}
	}
}

func (s *sampler) add(dx int, px []byte, weight uint64) {
	off := dx * len(px)
	work := s.work[off : off+len(px)]
	divisors := s.divisors[off : off+len(px)]
	for c, v := range px {
		work[c] += uint64(v) * weight
		divisors[c] += weight
	}
}

// flush writes the pending row as destination row dy and resets the
// accumulators.
func (s *sampler) flush(dy int) {
	out := s.dd.Row(s.dst, dy)
	for i, div := range s.divisors {
		if div == 0 {
			panic(fmt.Sprintf("subsample: destination sample %d of row %d received no weight", i, dy))
		}
		out[i] = byte(s.work[i] / div)
	}
	clear(s.work)
	clear(s.divisors)
}
