// Package imgio loads image files into pixel buffers and writes them back.
package imgio

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pixproc/pixmap"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

// DefaultQuality is the JPEG quality used when Save is given no WithQuality.
const DefaultQuality = 75

// Formats lists the values accepted by Save as output type, besides "same".
var Formats = []string{"gif", "jpeg", "png", "bmp", "tiff"}

// Load decodes the image at path into a tightly packed buffer.
func Load(path string) ([]byte, pixmap.Descriptor, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pixmap.Descriptor{}, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer closeFile(f, path)

	img, imgType, err := image.Decode(f)
	if err != nil {
		return nil, pixmap.Descriptor{}, "", fmt.Errorf("could not decode image %q: %w", path, err)
	}

	buf, d := pixmap.FromImage(img)
	return buf, d, imgType, nil
}

// DecodeConfig reads only the header of the image at path.
func DecodeConfig(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer closeFile(f, path)

	conf, imgType, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("could not read image %q: %w", path, err)
	}
	return conf, imgType, nil
}

func closeFile(f *os.File, path string) {
	if closeErr := f.Close(); closeErr != nil {
		slog.Error("could not close image", "name", path, "error", closeErr)
	}
}

// ColorSpace names the colour space of an image colour model: GRAYSCALE,
// RGB, YCbCr, CMYK or UNKNOWN.
func ColorSpace(m color.Model) string {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return "GRAYSCALE"
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model:
		return "RGB"
	case color.YCbCrModel, color.NYCbCrAModel:
		return "YCbCr"
	case color.CMYKModel:
		return "CMYK"
	}
	if _, ok := m.(color.Palette); ok {
		return "RGB"
	}
	return "UNKNOWN"
}

type saveConfig struct {
	quality int
}

// SaveOption tunes the encoder used by Save.
type SaveOption func(*saveConfig)

// WithQuality sets the JPEG quality, 1 to 100. Other encoders ignore it.
func WithQuality(q int) SaveOption {
	return func(c *saveConfig) { c.quality = q }
}

// OutputType resolves the encoder for an image decoded as imgType. An outType
// prefixed with "unsup:" only applies to formats without an encoder.
func OutputType(imgType, outType string) string {
	outType, unsupOnly := strings.CutPrefix(outType, "unsup:")
	if (unsupOnly && (imgType != "webp")) || (outType == "same") {
		outType = imgType
	}
	return outType
}

// Save encodes the buffer as outType next to destDir/srcName, replacing the
// extension. The file is written to a temporary name and renamed on success.
func Save(buf []byte, d pixmap.Descriptor, imgType, outType, destDir, srcName string, opts ...SaveOption) (err error) {
	cfg := saveConfig{quality: DefaultQuality}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.quality < 1 || cfg.quality > 100 {
		return fmt.Errorf("invalid JPEG quality %d for %q", cfg.quality, srcName)
	}

	img, err := pixmap.ToImage(buf, d)
	if err != nil {
		return fmt.Errorf("could not convert %q to an image: %w", srcName, err)
	}

	outType = OutputType(imgType, outType)
	oldExt := filepath.Ext(srcName)
	destName := fmt.Sprintf("%s.%s", srcName[:len(srcName)-len(oldExt)], outType)

	outFile, err := os.CreateTemp(destDir, destName)
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", destName, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", destName, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), filepath.Join(destDir, destName)); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", destName, defErr)
			}
		} else {
			_ = os.Remove(outFile.Name())
		}
	}()

	switch outType {
	case "gif":
		if err = gif.Encode(outFile, img, nil); err != nil {
			return fmt.Errorf("could not encode GIF destination %q: %w", destName, err)
		}
	case "jpeg":
		if err = jpeg.Encode(outFile, img, &jpeg.Options{Quality: cfg.quality}); err != nil {
			return fmt.Errorf("could not encode JPEG destination %q: %w", destName, err)
		}
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		if err = enc.Encode(outFile, img); err != nil {
			return fmt.Errorf("could not encode PNG destination %q: %w", destName, err)
		}
	case "bmp":
		if err = bmp.Encode(outFile, img); err != nil {
			return fmt.Errorf("could not encode BMP destination %q: %w", destName, err)
		}
	case "tiff":
		if err = tiff.Encode(outFile, img, nil); err != nil {
			return fmt.Errorf("could not encode TIFF destination %q: %w", destName, err)
		}
	default:
		return fmt.Errorf("unsupported output format: %s", outType)
	}

	canRename = true
	return nil
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
