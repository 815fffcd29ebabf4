package mangle

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"pixproc/pixmap"
	"pixproc/subsample"
)

// layout describes how a source image maps onto the requested output size.
type layout struct {
	src    image.Rectangle // part of the source that is kept
	canvas image.Rectangle // full output size
	dest   image.Rectangle // where the scaled source lands on the canvas
}

func planResize(srcBounds image.Rectangle, width, height int, crop, fill bool) layout {
	srcWidth := float64(srcBounds.Dx())
	srcHeight := float64(srcBounds.Dy())

	destWidth := float64(width)
	if destWidth == 0 {
		destWidth = srcWidth
	}

	destHeight := float64(height)
	if destHeight == 0 {
		destHeight = srcHeight
	}

	destSize := image.Rect(0, 0, int(destWidth), int(destHeight))
	destBounds := destSize

	srcAR := srcWidth / srcHeight
	destAR := destWidth / destHeight
	if crop {
		if srcAR < destAR {
			keep := int(math.Round(srcWidth / destAR))
			srcBounds.Min.Y += (srcBounds.Dy() - keep) / 2
			srcBounds.Max.Y = srcBounds.Min.Y + keep
		} else if srcAR > destAR {
			keep := int(math.Round(srcHeight * destAR))
			srcBounds.Min.X += (srcBounds.Dx() - keep) / 2
			srcBounds.Max.X = srcBounds.Min.X + keep
		}
	} else {
		if srcAR < destAR {
			dw := destHeight * srcAR
			if !fill {
				destSize.Max.X = int(math.Round(dw))
				destBounds.Max.X = destSize.Max.X
			} else if destWidth > dw {
				idw := int(math.Round((destWidth - dw) / 2))
				destBounds.Min.X += idw
				destBounds.Max.X -= idw
			}
		} else if srcAR > destAR {
			dh := destWidth / srcAR
			if !fill {
				destSize.Max.Y = int(math.Round(dh))
				destBounds.Max.Y = destSize.Max.Y
			} else if destHeight > dh {
				idh := int(math.Round((destHeight - dh) / 2))
				destBounds.Min.Y += idh
				destBounds.Max.Y -= idh
			}
		}
	}

	return layout{src: srcBounds, canvas: destSize, dest: destBounds}
}

// cropBuffer copies the rectangle r of buf into a new packed buffer.
func cropBuffer(buf []byte, d pixmap.Descriptor, r image.Rectangle) ([]byte, pixmap.Descriptor, error) {
	if r == image.Rect(0, 0, d.Width, d.Height) {
		return buf, d, nil
	}
	cd, err := pixmap.New(r.Dx(), r.Dy(), d.Components, 0)
	if err != nil {
		return nil, pixmap.Descriptor{}, err
	}
	out := make([]byte, cd.Len())
	for y := range cd.Height {
		start := d.Offset(r.Min.X, r.Min.Y+y)
		copy(cd.Row(out, y), buf[start:start+cd.RowBytes()])
	}
	return out, cd, nil
}

// trimTo centers r inside a rectangle of at most size.
func trimTo(r image.Rectangle, size image.Point) image.Rectangle {
	if dx := r.Dx() - size.X; dx > 0 {
		r.Min.X += dx / 2
		r.Max.X = r.Min.X + size.X
	}
	if dy := r.Dy() - size.Y; dy > 0 {
		r.Min.Y += dy / 2
		r.Max.Y = r.Min.Y + size.Y
	}
	return r
}

// resize shrinks the buffer to fit width x height. A source that is not larger
// than the target on both axes is only cropped or placed on the fill canvas;
// when neither applies it is returned unchanged.
func resize(logger *slog.Logger, buf []byte, d pixmap.Descriptor, width, height int, crop bool, fillColor color.Color) ([]byte, pixmap.Descriptor, error) {
	if d.Width == 0 || d.Height == 0 {
		return buf, d, nil
	}
	full := image.Rect(0, 0, d.Width, d.Height)
	l := planResize(full, width, height, crop, fillColor != nil)

	shrink := l.src.Dx() > l.dest.Dx() && l.src.Dy() > l.dest.Dy()
	if !shrink {
		if l.src == full && l.canvas == l.dest {
			logger.Warn("image already fits, not resizing", "width", d.Width, "height", d.Height)
			return buf, d, nil
		}
		l.src = trimTo(l.src, l.dest.Size())
	}

	dst, dd, err := cropBuffer(buf, d, l.src)
	if err != nil {
		return nil, pixmap.Descriptor{}, err
	}

	if shrink {
		sd := dd
		logger.Info("resizing", "width", l.dest.Dx(), "height", l.dest.Dy())
		if dd, err = pixmap.New(l.dest.Dx(), l.dest.Dy(), d.Components, 0); err != nil {
			return nil, pixmap.Descriptor{}, err
		}
		src := dst
		dst = make([]byte, dd.Len())
		if err := subsample.Bilinear(dst, dd, src, sd, nil); err != nil {
			return nil, pixmap.Descriptor{}, fmt.Errorf("could not subsample %s to %s: %w", sd, dd, err)
		}
	} else if l.src != full {
		logger.Info("cropping", "width", dd.Width, "height", dd.Height)
	}

	if l.canvas == l.dest {
		return dst, dd, nil
	}

	cd, err := pixmap.New(l.canvas.Dx(), l.canvas.Dy(), d.Components, 0)
	if err != nil {
		return nil, pixmap.Descriptor{}, err
	}
	canvas := make([]byte, cd.Len())
	px := fillPixel(fillColor, d.Components)
	for off := 0; off < len(canvas); off += len(px) {
		copy(canvas[off:], px)
	}
	at := l.dest.Min.Add(l.dest.Size().Sub(image.Pt(dd.Width, dd.Height)).Div(2))
	for y := range dd.Height {
		start := cd.Offset(at.X, at.Y+y)
		copy(canvas[start:], dd.Row(dst, y))
	}
	return canvas, cd, nil
}

// fillPixel encodes c for a buffer with the given component count, using the
// same channel layout as pixmap.FromImage.
func fillPixel(c color.Color, components int) []byte {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	gray := color.GrayModel.Convert(c).(color.Gray).Y
	switch components {
	case 1:
		return []byte{gray}
	case 2:
		return []byte{gray, nc.A}
	case 3:
		return []byte{nc.R, nc.G, nc.B}
	}
	px := make([]byte, components)
	copy(px, []byte{nc.R, nc.G, nc.B, nc.A})
	return px
}
