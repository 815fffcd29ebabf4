// Package mangle implements the command that runs the pixel transform engine
// over every image of a folder.
package mangle

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"pixproc/convolve"
	"pixproc/imgio"
	"pixproc/parallel"
	"pixproc/recolor"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Scan       string    `help:"Source folder to scan" default:"."`
	Dest       string    `help:"Destination folder for processed pictures. Relative to scan dir if not absolute. If same as scan dir, will overwrite source files." default:"mangled"`
	Resize     bool      `help:"Shrink image by area averaging" default:"false" group:"resize"`
	Width      int       `help:"Max width" group:"resize"`
	Height     int       `help:"Max height" group:"resize"`
	Crop       bool      `help:"Crop image to maintain requested aspect ratio" default:"false" group:"resize"`
	Fill       string    `help:"If given and not cropping, will fill background with this color to maintain destination aspect ratio" group:"resize"`
	Matrix     string    `help:"Colour matrix preset (grayscale, identity, invert, sepia)" group:"recolor"`
	Coeffs     []float64 `help:"Colour matrix coefficients, row-major, one row per component" sep:"," group:"recolor"`
	Bias       []float64 `help:"Value added to each component after the colour matrix" sep:"," group:"recolor"`
	Swap       string    `help:"Channel order such as 2,1,0, or 'reverse'" group:"recolor"`
	Kernel     string    `help:"Convolution kernel preset (box3, box5, emboss, gaussian3, gaussian5, sharpen)" group:"convolve"`
	Weights    []float64 `help:"Convolution kernel weights, row-major" sep:"," group:"convolve"`
	KernelSize string    `help:"Kernel size as WxH, square when omitted" group:"convolve"`
	Anchor     []int     `help:"Kernel anchor as X,Y, centered when omitted" sep:"," group:"convolve"`
	Channels   string    `help:"Inclusive channel range to filter as START-STOP, all channels when omitted" group:"convolve"`
	Format     string    `help:"Output format of mangled image. If prefixed with 'unsup:' will convert only unsupported formats" enum:"same,gif,unsup:gif,jpeg,unsup:jpeg,png,unsup:png,bmp,unsup:bmp,tiff,unsup:tiff" default:"unsup:png"`
	Quality    int       `help:"JPEG quality of mangled images (1-100)" default:"75"`

	FillColor color.Color      `kong:"-"`
	Perm      []int            `kong:"-"`
	Filter    *convolve.Kernel `kong:"-"`
	Range     []int            `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("invalid JPEG quality: %d", c.Quality)
	}

	if c.Resize {
		switch {
		case (c.Width < 0):
			return fmt.Errorf("invalid resize width: %d", c.Width)
		case (c.Height < 0):
			return fmt.Errorf("invalid resize height: %d", c.Height)
		case (c.Width == 0) && (c.Height == 0):
			return fmt.Errorf("no resize dimensions given")
		}
	}

	if (!c.Crop) && (c.Fill != "") {
		if c.FillColor, err = parseHexToColor(c.Fill); err != nil {
			return err
		}
	}

	if (c.Matrix != "") && (len(c.Coeffs) > 0) {
		return fmt.Errorf("matrix preset and coefficients are exclusive")
	}
	if c.Matrix != "" {
		// presets are sized per image, check the name against an RGB layout
		if _, err := recolor.Preset(c.Matrix, 3); err != nil {
			return err
		}
	}

	if c.Swap != "" && c.Swap != "reverse" {
		if c.Perm, err = parseInts(c.Swap, ","); err != nil {
			return fmt.Errorf("invalid channel order %q: %w", c.Swap, err)
		}
	}

	if c.Filter, err = c.kernel(); err != nil {
		return err
	}

	if c.Channels != "" {
		if c.Range, err = parseInts(c.Channels, "-"); err != nil || len(c.Range) != 2 {
			return fmt.Errorf("invalid channel range %q, should be START-STOP", c.Channels)
		}
	}

	return nil
}

func (c *CLICmd) kernel() (*convolve.Kernel, error) {
	if (c.Kernel != "") && (len(c.Weights) > 0) {
		return nil, fmt.Errorf("kernel preset and weights are exclusive")
	}
	if c.Kernel != "" {
		return convolve.Preset(c.Kernel)
	}
	if len(c.Weights) == 0 {
		if (c.KernelSize != "") || (len(c.Anchor) > 0) {
			return nil, fmt.Errorf("kernel size and anchor need kernel weights")
		}
		return nil, nil
	}

	var opts []convolve.KernelOption
	if c.KernelSize != "" {
		size, err := parseInts(strings.ToLower(c.KernelSize), "x")
		if err != nil || len(size) != 2 {
			return nil, fmt.Errorf("invalid kernel size %q, should be WxH", c.KernelSize)
		}
		opts = append(opts, convolve.WithSize(size[0], size[1]))
	}
	if len(c.Anchor) > 0 {
		if len(c.Anchor) != 2 {
			return nil, fmt.Errorf("invalid kernel anchor %v, should be X,Y", c.Anchor)
		}
		opts = append(opts, convolve.WithAnchor(c.Anchor[0], c.Anchor[1]))
	}
	return convolve.NewKernel(c.Weights, opts...)
}

func (c *CLICmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	var processedCount, errCount atomic.Uint64
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		worker(func() {
			filePath := filepath.Join(c.Scan, file.Name())
			logger := slog.Default().With("file", filePath)

			buf, d, imgType, err := imgio.Load(filePath)
			if err != nil {
				errCount.Add(1)
				logger.Error("could not load image", "error", err)
				return
			}
			logger.Debug("loaded", "geometry", d, "type", imgType)

			if c.Resize {
				buf, d, err = resize(logger, buf, d, c.Width, c.Height, c.Crop, c.FillColor)
				if err != nil {
					errCount.Add(1)
					logger.Error("could not resize image", "error", err)
					return
				}
			}

			if err = c.recolor(logger, buf, d); err != nil {
				errCount.Add(1)
				logger.Error("could not recolor image", "error", err)
				return
			}

			if err = c.convolve(logger, buf, d); err != nil {
				errCount.Add(1)
				logger.Error("could not filter image", "error", err)
				return
			}

			if err = imgio.Save(buf, d, imgType, c.Format, c.Dest, file.Name(), imgio.WithQuality(c.Quality)); err != nil {
				errCount.Add(1)
				logger.Error("could not save image", "dir", c.Dest, "error", err)
				return
			}
			processedCount.Add(1)
		})
	}

	wait()

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

func parseInts(s, sep string) ([]int, error) {
	fields := strings.Split(s, sep)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseHexToColor(s string) (color.Color, error) {
	var c color.RGBA
	switch len(s) {
	case 4:
		n, err := fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 3 {
			return nil, fmt.Errorf("insufficient fill color fields: %d", n)
		}

		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A = 0xFF
	case 5:
		n, err := fmt.Sscanf(s, "#%1x%1x%1x%1x", &c.R, &c.G, &c.B, &c.A)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 4 {
			return nil, fmt.Errorf("insufficient fill color fields: %d", n)
		}

		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A |= c.A << 4
	case 7:
		n, err := fmt.Sscanf(s, "#%2x%2x%2x", &c.R, &c.G, &c.B)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 3 {
			return nil, fmt.Errorf("insufficient fill color fields: %d", n)
		}

		c.A = 0xFF
	case 9:
		n, err := fmt.Sscanf(s, "#%2x%2x%2x%2x", &c.R, &c.G, &c.B, &c.A)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 4 {
			return nil, fmt.Errorf("insufficient fill color fields: %d", n)
		}
	default:
		return nil, fmt.Errorf("invalid fill color, should be #RGB, #RGBA, #RRGGBB or #RRGGBBAA")
	}

	// color.RGBA is alpha-premultiplied
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
}
