package pixmap

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// FromImage copies img into a new tightly packed buffer. Gray images yield one
// component, opaque images three (RGB) and the rest four (non-premultiplied RGBA).
func FromImage(img image.Image) ([]byte, Descriptor) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if gray, ok := img.(*image.Gray); ok {
		d, _ := New(w, h, 1, 0)
		buf := make([]byte, d.Len())
		for y := range h {
			start := (y+b.Min.Y-gray.Rect.Min.Y)*gray.Stride + (b.Min.X - gray.Rect.Min.X)
			copy(d.Row(buf, y), gray.Pix[start:start+w])
		}
		return buf, d
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	} else {
		nrgba = nrgba.SubImage(b).(*image.NRGBA)
	}

	components := 3
	if !nrgba.Opaque() {
		components = 4
	}

	d, _ := New(w, h, components, 0)
	buf := make([]byte, d.Len())
	for y := range h {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+4*w]
		row := d.Row(buf, y)
		if components == 4 {
			copy(row, src)
			continue
		}
		for x := range w {
			copy(row[x*3:x*3+3], src[x*4:x*4+3])
		}
	}
	return buf, d
}

// ToImage copies the described buffer into a new image. One component gives
// an *image.Gray, two (gray and alpha), three and four an *image.NRGBA.
func ToImage(buf []byte, d Descriptor) (image.Image, error) {
	if err := d.Check(buf); err != nil {
		return nil, err
	}

	r := image.Rect(0, 0, d.Width, d.Height)
	if d.Components == 1 {
		gray := image.NewGray(r)
		for y := range d.Height {
			copy(gray.Pix[y*gray.Stride:], d.Row(buf, y))
		}
		return gray, nil
	}
	if d.Components > 4 {
		return nil, fmt.Errorf("%w: no image model for %d components", ErrInvalidArgument, d.Components)
	}

	img := image.NewNRGBA(r)
	for y := range d.Height {
		row := d.Row(buf, y)
		for x := range d.Width {
			px := row[x*d.Components : (x+1)*d.Components]
			var c color.NRGBA
			switch d.Components {
			case 2:
				c = color.NRGBA{R: px[0], G: px[0], B: px[0], A: px[1]}
			case 3:
				c = color.NRGBA{R: px[0], G: px[1], B: px[2], A: 0xFF}
			default:
				c = color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img, nil
}
