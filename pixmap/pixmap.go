// Package pixmap describes how a flat, caller-owned byte buffer is laid out as
// a raster image. It is the single source of pixel-offset arithmetic for the
// transform packages.
package pixmap

import (
	"errors"
	"fmt"
)

// MaxComponents is the largest number of interleaved channels per pixel.
// Per-pixel temporaries are fixed-size arrays of this length.
const MaxComponents = 5

// ErrInvalidArgument is wrapped by every validation failure of the engine.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Descriptor interprets a pixel buffer. It never owns the buffer.
type Descriptor struct {
	// Width and Height are the image dimensions in pixels.
	Width  int
	Height int
	// Components is the number of interleaved 8-bit channels per pixel.
	Components int
	// Stride is the byte distance between the starts of consecutive rows.
	// The pixel at (x, y) channel c starts at y*Stride + x*Components + c.
	Stride int
}

// New validates the geometry and returns a descriptor. A stride smaller than
// components*width, including 0, is clamped up to that minimum.
func New(width, height, components, stride int) (Descriptor, error) {
	switch {
	case width < 0 || height < 0:
		return Descriptor{}, invalidf("negative size %dx%d", width, height)
	case components < 1:
		return Descriptor{}, invalidf("no components")
	case components > MaxComponents:
		return Descriptor{}, invalidf("too many components: %d > %d", components, MaxComponents)
	}

	if minStride := width * components; stride < minStride {
		stride = minStride
	}

	return Descriptor{
		Width:      width,
		Height:     height,
		Components: components,
		Stride:     stride,
	}, nil
}

// Validate checks an existing descriptor without modifying it.
func (d Descriptor) Validate() error {
	switch {
	case d.Width < 0 || d.Height < 0:
		return invalidf("negative size %dx%d", d.Width, d.Height)
	case d.Components < 1:
		return invalidf("no components")
	case d.Components > MaxComponents:
		return invalidf("too many components: %d > %d", d.Components, MaxComponents)
	case d.Stride < d.RowBytes():
		return invalidf("stride %d smaller than row size %d", d.Stride, d.RowBytes())
	}
	return nil
}

// RowBytes is the number of bytes holding pixel data in a row.
func (d Descriptor) RowBytes() int {
	return d.Width * d.Components
}

// Len is the minimum buffer length for the described image.
func (d Descriptor) Len() int {
	return d.Stride * d.Height
}

// Offset returns the byte offset of the first channel of pixel (x, y).
func (d Descriptor) Offset(x, y int) int {
	return y*d.Stride + x*d.Components
}

// Check validates the descriptor and that buf is large enough for it.
func (d Descriptor) Check(buf []byte) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if len(buf) < d.Len() {
		return invalidf("buffer too small: %d < %d", len(buf), d.Len())
	}
	return nil
}

// Row returns the pixel bytes of row y, excluding stride padding.
func (d Descriptor) Row(buf []byte, y int) []byte {
	off := y * d.Stride
	return buf[off : off+d.RowBytes() : off+d.RowBytes()]
}

// Pixel returns the channels of pixel (x, y).
func (d Descriptor) Pixel(buf []byte, x, y int) []byte {
	off := d.Offset(x, y)
	return buf[off : off+d.Components : off+d.Components]
}

// SameSize reports whether both descriptors have identical dimensions.
func (d Descriptor) SameSize(o Descriptor) bool {
	return d.Width == o.Width && d.Height == o.Height
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%dx%dx%d/%d", d.Width, d.Height, d.Components, d.Stride)
}
