package orient

import (
	"fmt"
	"strings"

	"pixproc/pixmap"
)

// Mode selects a lossless geometric transform.
type Mode int

const (
	RotateRight90 Mode = iota
	Rotate180
	RotateLeft90
	FlipHorizontal
	FlipVertical
)

var modeNames = [...]string{
	RotateRight90:  "right90",
	Rotate180:      "180",
	RotateLeft90:   "left90",
	FlipHorizontal: "fliph",
	FlipVertical:   "flipv",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode accepts the names returned by Mode.String, case insensitively.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown rotation %q", pixmap.ErrInvalidArgument, s)
}

// SwapsAxes reports whether m exchanges width and height.
func (m Mode) SwapsAxes() bool {
	return m == RotateRight90 || m == RotateLeft90
}

// DestDescriptor returns the packed destination geometry for rotating src by m.
func DestDescriptor(src pixmap.Descriptor, m Mode) (pixmap.Descriptor, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return pixmap.Descriptor{}, fmt.Errorf("%w: unknown rotation %d", pixmap.ErrInvalidArgument, int(m))
	}
	if m.SwapsAxes() {
		return pixmap.New(src.Height, src.Width, src.Components, 0)
	}
	return pixmap.New(src.Width, src.Height, src.Components, 0)
}

// Rotate writes src transformed by m into dst. Channels are copied verbatim.
func Rotate(dst []byte, dd pixmap.Descriptor, src []byte, sd pixmap.Descriptor, m Mode) error {
	if err := sd.Check(src); err != nil {
		return err
	}
	if err := dd.Check(dst); err != nil {
		return err
	}
	if sd.Components != dd.Components {
		return fmt.Errorf("%w: component mismatch: %d != %d", pixmap.ErrInvalidArgument, sd.Components, dd.Components)
	}

	var dest func(x, y int) (int, int)
	w, h := sd.Width, sd.Height
	switch m {
	case RotateRight90:
		dest = func(x, y int) (int, int) { return h - 1 - y, x }
	case Rotate180:
		dest = func(x, y int) (int, int) { return w - 1 - x, h - 1 - y }
	case RotateLeft90:
		dest = func(x, y int) (int, int) { return y, w - 1 - x }
	case FlipHorizontal:
		dest = func(x, y int) (int, int) { return w - 1 - x, y }
	case FlipVertical:
		dest = func(x, y int) (int, int) { return x, h - 1 - y }
	default:
		return fmt.Errorf("%w: unknown rotation %d", pixmap.ErrInvalidArgument, int(m))
	}

	if m.SwapsAxes() {
		if dd.Width != h || dd.Height != w {
			return fmt.Errorf("%w: %s of %dx%d needs %dx%d destination, got %dx%d",
				pixmap.ErrInvalidArgument, m, w, h, h, w, dd.Width, dd.Height)
		}
	} else if !sd.SameSize(dd) {
		return fmt.Errorf("%w: %s of %dx%d needs %dx%d destination, got %dx%d",
			pixmap.ErrInvalidArgument, m, w, h, w, h, dd.Width, dd.Height)
	}

	n := sd.Components
	for y := range h {
		row := sd.Row(src, y)
		for x := range w {
			dx, dy := dest(x, y)
			copy(dd.Pixel(dst, dx, dy), row[x*n:x*n+n])
		}
	}
	return nil
}
