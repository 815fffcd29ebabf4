// Package convolve filters a pixel buffer in place with an arbitrary
// rectangular kernel.
//
// Kernel taps falling outside the image contribute nothing and their weight is
// removed from the normalising divisor, so borders are renormalised rather
// than padded or clamped.
package convolve

import (
	"fmt"
	"math"

	"pixproc/pixmap"
)

type config struct {
	start, stop int
	scratch     []byte
}

// Option configures Apply.
type Option func(*config)

// WithComponents restricts filtering to the inclusive channel range
// [start, stop]. Other channels are copied unchanged.
func WithComponents(start, stop int) Option {
	return func(c *config) {
		c.start, c.stop = start, stop
	}
}

// WithScratch supplies the row buffer used while filtering in place, which
// must hold at least ScratchSize bytes. Without it Apply allocates one.
func WithScratch(scratch []byte) Option {
	return func(c *config) {
		c.scratch = scratch
	}
}

// ScratchSize is the number of scratch bytes Apply needs for d and k.
func ScratchSize(d pixmap.Descriptor, k *Kernel) int {
	return (k.AnchorY + 1) * d.Stride
}

// Apply filters buf in place with k. Each output channel is
// round(sum/divisor) saturated to [0, 255]. When every weighted tap cancels
// out and the divisor is zero the channel is set to 255.
func Apply(buf []byte, d pixmap.Descriptor, k *Kernel, opts ...Option) error {
	if err := d.Check(buf); err != nil {
		return err
	}
	if err := k.check(); err != nil {
		return err
	}

	conf := config{start: 0, stop: d.Components - 1}
	for _, opt := range opts {
		opt(&conf)
	}
	if conf.start < 0 || conf.stop >= d.Components || conf.start > conf.stop {
		return fmt.Errorf("%w: component range [%d,%d] outside [0,%d]",
			pixmap.ErrInvalidArgument, conf.start, conf.stop, d.Components-1)
	}

	size := ScratchSize(d, k)
	switch {
	case conf.scratch == nil:
		conf.scratch = make([]byte, size)
	case len(conf.scratch) < size:
		return fmt.Errorf("%w: scratch too small: %d < %d", pixmap.ErrInvalidArgument, len(conf.scratch), size)
	}

	f := filter{
		buf:   buf,
		d:     d,
		k:     k,
		total: k.Sum(),
		start: conf.start,
		stop:  conf.stop,
	}
	rows := newRing(conf.scratch, buf, d, k.AnchorY)
	for y := range d.Height {
		if prev := y - (k.AnchorY + 1); prev >= 0 {
			rows.flush(prev)
		}
		f.row(y, rows.next(y))
	}
	rows.drain()
	return nil
}

type filter struct {
	buf         []byte
	d           pixmap.Descriptor
	k           *Kernel
	total       float64
	start, stop int
}

// row computes output row y into out, reading only source rows.
func (f *filter) row(y int, out []byte) {
	d, k := f.d, f.k
	n := d.Components

	// kernel rows j in [j0, j1] sample rows inside the image
	j0 := max(0, k.AnchorY-y)
	j1 := min(k.Height-1, d.Height-1-y+k.AnchorY)

	copy(out, d.Row(f.buf, y))

	lastI0, lastI1, divisor := -1, -1, 0.0
	for x := range d.Width {
		i0 := max(0, k.AnchorX-x)
		i1 := min(k.Width-1, d.Width-1-x+k.AnchorX)
		if i0 != lastI0 || i1 != lastI1 {
			divisor = f.divisor(i0, i1, j0, j1)
			lastI0, lastI1 = i0, i1
		}

		for c := f.start; c <= f.stop; c++ {
			var sum float64
			for j := j0; j <= j1; j++ {
				src := f.d.Offset(x-k.AnchorX, y-k.AnchorY+j) + c
				weights := k.Weights[j*k.Width:]
				for i := i0; i <= i1; i++ {
					sum += weights[i] * float64(f.buf[src+i*n])
				}
			}

			// exact zero only; a float residue from cancelling weights saturates
			v := byte(255)
			if divisor != 0 {
				v = pixmap.ClampByte(math.Round(sum / divisor))
			}
			out[x*n+c] = v
		}
	}
}

// divisor starts from the full kernel weight and drops every tap outside the
// in-range window [i0, i1]x[j0, j1].
func (f *filter) divisor(i0, i1, j0, j1 int) float64 {
	k := f.k
	divisor := f.total
	for j := range k.Height {
		for i := range k.Width {
			if i < i0 || i > i1 || j < j0 || j > j1 {
				divisor -= k.at(i, j)
			}
		}
	}
	return divisor
}
