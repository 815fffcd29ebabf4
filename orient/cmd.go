// Package orient rotates and mirrors pixel buffers by multiples of 90 degrees
// and provides the command that applies those transforms to image folders.
package orient

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"pixproc/imgio"
	"pixproc/parallel"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Scan    string `help:"Source folder to scan" default:"."`
	Dest    string `help:"Destination folder. Relative to scan dir if not absolute." default:"oriented"`
	Mode    string `help:"Transform to apply. 'auto' turns portrait images right and leaves landscape ones as they are." enum:"auto,right90,180,left90,fliph,flipv" default:"auto"`
	Move    bool   `help:"Remove source files once processed" default:"false"`
	Format  string `help:"Output format of transformed images. If prefixed with 'unsup:' will convert only unsupported formats" enum:"same,gif,unsup:gif,jpeg,unsup:jpeg,png,unsup:png,bmp,unsup:bmp,tiff,unsup:tiff" default:"unsup:png"`
	Quality int    `help:"JPEG quality of written images (1-100)" default:"75"`

	Transform Mode `kong:"-"`
	Auto      bool `kong:"-"`
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

	if c.Auto = c.Mode == "auto"; c.Auto {
		c.Transform = RotateRight90
	} else if c.Transform, err = ParseMode(c.Mode); err != nil {
		return err
	}

	return nil
}

func (c *CLICmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	var transformedCount, keptCount, errCount atomic.Uint64
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		worker(func() {
			name := filepath.Join(c.Scan, file.Name())
			logger := slog.Default().With("file", name)

			imgConf, _, err := imgio.DecodeConfig(name)
			if err != nil {
				errCount.Add(1)
				logger.Error("could not read image", "error", err)
				return
			}

			logger.Debug("read header", "width", imgConf.Width, "height", imgConf.Height,
				"colorSpace", imgio.ColorSpace(imgConf.ColorModel))

			if c.Auto && imgConf.Height <= imgConf.Width {
				dest := filepath.Join(c.Dest, file.Name())
				if err = keepFile(logger, name, dest, c.Move); err != nil {
					errCount.Add(1)
					logger.Error("could not keep image", "to", dest, "error", err)
					return
				}
				keptCount.Add(1)
				return
			}

			if err = transformFile(logger, name, c.Dest, file.Name(), c.Transform, c.Format, c.Quality); err != nil {
				errCount.Add(1)
				logger.Error("could not transform image", "mode", c.Transform, "error", err)
				return
			}
			if c.Move {
				if err = os.Remove(name); err != nil {
					errCount.Add(1)
					logger.Error("could not remove source image", "error", err)
					return
				}
			}
			transformedCount.Add(1)
		})
	}

	wait()

	transformed, kept, errors := transformedCount.Load(), keptCount.Load(), errCount.Load()
	slog.Info("stats", "transformed", transformed, "kept", kept, "errors", errors,
		"total", transformed+kept+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}
