package pixmap

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name                         string
		width, height, comps, stride int
		wantStride                   int
		wantErr                      bool
	}{
		{name: "packed", width: 4, height: 2, comps: 3, stride: 12, wantStride: 12},
		{name: "unspecified stride", width: 4, height: 2, comps: 3, wantStride: 12},
		{name: "small stride clamped", width: 4, height: 2, comps: 3, stride: 5, wantStride: 12},
		{name: "padded", width: 4, height: 2, comps: 1, stride: 8, wantStride: 8},
		{name: "five components", width: 1, height: 1, comps: 5, wantStride: 5},
		{name: "too many components", width: 1, height: 1, comps: 6, wantErr: true},
		{name: "no components", width: 1, height: 1, comps: 0, wantErr: true},
		{name: "negative width", width: -1, height: 1, comps: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.width, tt.height, tt.comps, tt.stride)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStride, d.Stride)
			assert.Equal(t, tt.wantStride*tt.height, d.Len())
		})
	}
}

func TestOffset(t *testing.T) {
	d, err := New(3, 2, 2, 10)
	require.NoError(t, err)

	assert.Equal(t, 0, d.Offset(0, 0))
	assert.Equal(t, 4, d.Offset(2, 0))
	assert.Equal(t, 10, d.Offset(0, 1))
	assert.Equal(t, 14, d.Offset(2, 1))

	buf := make([]byte, d.Len())
	for i := range buf {
		buf[i] = byte(i)
	}
	assert.Equal(t, []byte{14, 15}, d.Pixel(buf, 2, 1))
	assert.Equal(t, []byte{10, 11, 12, 13, 14, 15}, d.Row(buf, 1))
}

func TestCheck(t *testing.T) {
	d, err := New(2, 2, 3, 8)
	require.NoError(t, err)

	assert.NoError(t, d.Check(make([]byte, 16)))
	assert.ErrorIs(t, d.Check(make([]byte, 15)), ErrInvalidArgument)

	bad := Descriptor{Width: 2, Height: 2, Components: 3, Stride: 4}
	assert.ErrorIs(t, bad.Check(make([]byte, 64)), ErrInvalidArgument)
}

func TestClampByte(t *testing.T) {
	assert.Equal(t, byte(0), ClampByte(-3))
	assert.Equal(t, byte(0), ClampByte(0))
	assert.Equal(t, byte(12), ClampByte(12.9))
	assert.Equal(t, byte(255), ClampByte(255))
	assert.Equal(t, byte(255), ClampByte(1e9))
}

func TestImageRoundTrip(t *testing.T) {
	t.Run("gray", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 3, 2))
		for i := range img.Pix {
			img.Pix[i] = byte(10 * i)
		}

		buf, d := FromImage(img)
		assert.Equal(t, 1, d.Components)
		assert.Equal(t, []byte{0, 10, 20, 30, 40, 50}, buf)

		out, err := ToImage(buf, d)
		require.NoError(t, err)
		assert.Equal(t, img.Pix, out.(*image.Gray).Pix)
	})

	t.Run("opaque", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 2, 1))
		img.SetRGBA(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
		img.SetRGBA(1, 0, color.RGBA{R: 4, G: 5, B: 6, A: 255})

		buf, d := FromImage(img)
		assert.Equal(t, 3, d.Components)
		assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, buf)

		out, err := ToImage(buf, d)
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{R: 4, G: 5, B: 6, A: 255}, out.At(1, 0))
	})

	t.Run("translucent", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		img.SetNRGBA(0, 0, color.NRGBA{R: 9, G: 8, B: 7, A: 6})

		buf, d := FromImage(img)
		assert.Equal(t, 4, d.Components)
		assert.Equal(t, []byte{9, 8, 7, 6}, buf)
	})

	t.Run("five components", func(t *testing.T) {
		d, err := New(1, 1, 5, 0)
		require.NoError(t, err)
		_, err = ToImage(make([]byte, 5), d)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}
