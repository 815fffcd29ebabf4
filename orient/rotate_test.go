package orient

import (
	"bytes"
	"testing"

	"pixproc/pixmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 3x2 image, one byte per pixel:
//
//	1 2 3
//	4 5 6
func smallImage(t *testing.T) ([]byte, pixmap.Descriptor) {
	t.Helper()
	d, err := pixmap.New(3, 2, 1, 0)
	require.NoError(t, err)
	return []byte{1, 2, 3, 4, 5, 6}, d
}

func rotate(t *testing.T, src []byte, sd pixmap.Descriptor, m Mode) ([]byte, pixmap.Descriptor) {
	t.Helper()
	dd, err := DestDescriptor(sd, m)
	require.NoError(t, err)
	dst := make([]byte, dd.Len())
	require.NoError(t, Rotate(dst, dd, src, sd, m))
	return dst, dd
}

func TestRotate(t *testing.T) {
	tests := []struct {
		mode          Mode
		width, height int
		want          []byte
	}{
		{RotateRight90, 2, 3, []byte{4, 1, 5, 2, 6, 3}},
		{Rotate180, 3, 2, []byte{6, 5, 4, 3, 2, 1}},
		{RotateLeft90, 2, 3, []byte{3, 6, 2, 5, 1, 4}},
		{FlipHorizontal, 3, 2, []byte{3, 2, 1, 6, 5, 4}},
		{FlipVertical, 3, 2, []byte{4, 5, 6, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			src, sd := smallImage(t)
			dst, dd := rotate(t, src, sd, tt.mode)
			assert.Equal(t, tt.width, dd.Width)
			assert.Equal(t, tt.height, dd.Height)
			assert.Equal(t, tt.want, dst)
		})
	}
}

func TestRotateGroupLaws(t *testing.T) {
	sd, err := pixmap.New(5, 3, 3, 17)
	require.NoError(t, err)
	src := make([]byte, sd.Len())
	for y := range sd.Height {
		row := sd.Row(src, y)
		for i := range row {
			row[i] = byte(y*31 + i)
		}
	}
	pixels := func(buf []byte, d pixmap.Descriptor) []byte {
		var out []byte
		for y := range d.Height {
			out = append(out, d.Row(buf, y)...)
		}
		return out
	}

	tests := map[string][]Mode{
		"180 twice":            {Rotate180, Rotate180},
		"right then left":      {RotateRight90, RotateLeft90},
		"left then right":      {RotateLeft90, RotateRight90},
		"four right turns":     {RotateRight90, RotateRight90, RotateRight90, RotateRight90},
		"flips make 180 twice": {FlipHorizontal, FlipVertical, Rotate180},
		"fliph twice":          {FlipHorizontal, FlipHorizontal},
	}
	for name, modes := range tests {
		t.Run(name, func(t *testing.T) {
			buf, d := src, sd
			for _, m := range modes {
				buf, d = rotate(t, buf, d, m)
			}
			assert.Equal(t, sd.Width, d.Width)
			assert.Equal(t, sd.Height, d.Height)
			assert.Equal(t, pixels(src, sd), pixels(buf, d))
		})
	}
}

func TestRotateInvalid(t *testing.T) {
	src, sd := smallImage(t)
	same, err := pixmap.New(3, 2, 1, 0)
	require.NoError(t, err)
	swapped, err := pixmap.New(2, 3, 1, 0)
	require.NoError(t, err)
	rgb, err := pixmap.New(3, 2, 3, 0)
	require.NoError(t, err)

	tests := []struct {
		name string
		dd   pixmap.Descriptor
		dst  []byte
		src  []byte
		mode Mode
	}{
		{"right90 needs swapped size", same, make([]byte, 6), src, RotateRight90},
		{"180 needs same size", swapped, make([]byte, 6), src, Rotate180},
		{"component mismatch", rgb, make([]byte, 18), src, FlipVertical},
		{"short destination", same, make([]byte, 5), src, FlipVertical},
		{"short source", same, make([]byte, 6), src[:5], FlipVertical},
		{"unknown mode", same, make([]byte, 6), src, Mode(9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := bytes.Clone(tt.dst)
			err := Rotate(tt.dst, tt.dd, tt.src, sd, tt.mode)
			assert.ErrorIs(t, err, pixmap.ErrInvalidArgument)
			assert.Equal(t, orig, tt.dst)
		})
	}
}

func TestParseMode(t *testing.T) {
	for m := RotateRight90; m <= FlipVertical; m++ {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseMode("FlipH")
	require.NoError(t, err)
	assert.Equal(t, FlipHorizontal, got)

	_, err = ParseMode("sideways")
	assert.ErrorIs(t, err, pixmap.ErrInvalidArgument)
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
