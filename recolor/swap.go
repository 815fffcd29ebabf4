package recolor

import (
	"fmt"

	"pixproc/pixmap"
)

// Reverse returns the permutation [n-1, ..., 0].
func Reverse(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = n - 1 - i
	}
	return perm
}

// ComponentSwap reorders the channels of every pixel of buf in place so that
// out[i] = in[perm[i]]. A nil permutation reverses the channel order.
func ComponentSwap(buf []byte, d pixmap.Descriptor, perm []int) error {
	if err := d.Check(buf); err != nil {
		return err
	}
	n := d.Components
	if perm == nil {
		perm = Reverse(n)
	}
	if len(perm) != n {
		return fmt.Errorf("%w: permutation has %d entries, want %d", pixmap.ErrInvalidArgument, len(perm), n)
	}
	for i, p := range perm {
		if p < 0 || p >= n {
			return fmt.Errorf("%w: permutation entry %d is %d, outside [0,%d)", pixmap.ErrInvalidArgument, i, p, n)
		}
	}

	var in pixmap.Sample
	for y := range d.Height {
		row := d.Row(buf, y)
		for off := 0; off < len(row); off += n {
			px := row[off : off+n : off+n]
			in.Load(px)
			for i, p := range perm {
				px[i] = in[p]
			}
		}
	}
	return nil
}
