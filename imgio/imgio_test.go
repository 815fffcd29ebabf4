package imgio

import (
	"image/color"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"pixproc/pixmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputType(t *testing.T) {
	tests := []struct {
		imgType, outType, want string
	}{
		{"jpeg", "same", "jpeg"},
		{"jpeg", "png", "png"},
		{"jpeg", "unsup:png", "jpeg"},
		{"webp", "unsup:png", "png"},
		{"webp", "same", "webp"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputType(tt.imgType, tt.outType), "%+v", tt)
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	d, err := pixmap.New(3, 2, 3, 0)
	require.NoError(t, err)
	buf := []byte{
		255, 0, 0, 0, 255, 0, 0, 0, 255,
		1, 2, 3, 4, 5, 6, 7, 8, 9,
	}

	for _, format := range []string{"png", "bmp", "tiff"} {
		t.Run(format, func(t *testing.T) {
			require.NoError(t, Save(buf, d, "webp", format, dir, "pic.webp"))

			path := filepath.Join(dir, "pic."+format)
			conf, imgType, err := DecodeConfig(path)
			require.NoError(t, err)
			assert.Equal(t, format, imgType)
			assert.Equal(t, 3, conf.Width)
			assert.Equal(t, 2, conf.Height)

			got, gd, _, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, d, gd)
			assert.Equal(t, buf, got)
		})
	}
}

func TestSaveGray(t *testing.T) {
	dir := t.TempDir()
	d, err := pixmap.New(2, 2, 1, 4)
	require.NoError(t, err)
	buf := []byte{10, 20, 99, 99, 30, 40, 99, 99}

	require.NoError(t, Save(buf, d, "png", "same", dir, "gray.png"))

	got, gd, imgType, err := Load(filepath.Join(dir, "gray.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", imgType)
	assert.Equal(t, 1, gd.Components)
	assert.Equal(t, []byte{10, 20, 30, 40}, got)
}

func TestSaveUnsupported(t *testing.T) {
	dir := t.TempDir()
	d, err := pixmap.New(1, 1, 3, 0)
	require.NoError(t, err)

	err = Save([]byte{1, 2, 3}, d, "webp", "same", dir, "pic.webp")
	assert.ErrorContains(t, err, "unsupported output format")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadMissing(t *testing.T) {
	_, _, _, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveQuality(t *testing.T) {
	d, err := pixmap.New(64, 64, 3, 0)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(1, 2))
	buf := make([]byte, d.Len())
	for i := range buf {
		buf[i] = byte(rng.UintN(256))
	}

	size := func(opts ...SaveOption) int64 {
		dir := t.TempDir()
		require.NoError(t, Save(buf, d, "png", "jpeg", dir, "noise.png", opts...))
		info, err := os.Stat(filepath.Join(dir, "noise.jpeg"))
		require.NoError(t, err)
		return info.Size()
	}

	low, high := size(WithQuality(10)), size(WithQuality(95))
	assert.Less(t, low, high)
	assert.Less(t, size(), high, "default quality")

	for _, q := range []int{0, 101} {
		dir := t.TempDir()
		assert.Error(t, Save(buf, d, "png", "jpeg", dir, "noise.png", WithQuality(q)), "quality %d", q)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}

func TestColorSpace(t *testing.T) {
	dir := t.TempDir()
	d, err := pixmap.New(2, 2, 3, 0)
	require.NoError(t, err)
	require.NoError(t, Save(make([]byte, d.Len()), d, "png", "jpeg", dir, "pic.png"))

	conf, _, err := DecodeConfig(filepath.Join(dir, "pic.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "YCbCr", ColorSpace(conf.ColorModel))

	assert.Equal(t, "GRAYSCALE", ColorSpace(color.GrayModel))
	assert.Equal(t, "RGB", ColorSpace(color.NRGBAModel))
	assert.Equal(t, "RGB", ColorSpace(color.Palette{color.Black}))
	assert.Equal(t, "CMYK", ColorSpace(color.CMYKModel))
	assert.Equal(t, "UNKNOWN", ColorSpace(color.ModelFunc(func(c color.Color) color.Color { return c })))
}
