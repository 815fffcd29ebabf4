package orient

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"pixproc/imgio"
)

// transformFile writes src rotated or mirrored by mode into destDir.
func transformFile(logger *slog.Logger, src, destDir, name string, mode Mode, format string, quality int) error {
	logger.Info("transforming", "mode", mode, "to", destDir)

	buf, sd, imgType, err := imgio.Load(src)
	if err != nil {
		return err
	}

	dd, err := DestDescriptor(sd, mode)
	if err != nil {
		return err
	}
	dst := make([]byte, dd.Len())
	if err := Rotate(dst, dd, buf, sd, mode); err != nil {
		return fmt.Errorf("could not %s %q: %w", mode, src, err)
	}

	outType := imgio.OutputType(imgType, format)
	ext := filepath.Ext(name)
	if err := checkDest(filepath.Join(destDir, name[:len(name)-len(ext)]+"."+outType)); err != nil {
		return err
	}
	return imgio.Save(dst, dd, imgType, format, destDir, name, imgio.WithQuality(quality))
}

// keepFile places src unchanged at dest, renaming it when move is set and
// copying it otherwise. Only regular files are kept and dest must not exist.
func keepFile(logger *slog.Logger, src, dest string, move bool) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("cannot stat source file %q: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot keep non-regular file %q: %s", info.Name(), info.Mode())
	}
	if err := checkDest(dest); err != nil {
		return err
	}

	if move {
		logger.Info("moving", "to", dest)
		return os.Rename(src, dest)
	}
	logger.Info("copying", "to", dest)

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("could not open source file %q: %w", src, err)
	}
	defer closeLogged(logger, in)

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("could not create destination file %q: %w", dest, err)
	}
	defer closeLogged(logger, out)

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("could not copy %q to %q: %w", src, dest, err)
	}
	if err = out.Sync(); err != nil {
		return fmt.Errorf("could not flush destination file %q: %w", dest, err)
	}
	return nil
}

func closeLogged(logger *slog.Logger, f *os.File) {
	if closeErr := f.Close(); closeErr != nil {
		logger.Error("could not close file", "name", f.Name(), "error", closeErr)
	}
}

// checkDest refuses to overwrite an existing destination.
func checkDest(dest string) error {
	info, err := os.Stat(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
	}
	return fmt.Errorf("destination file already exists: %q", info.Name())
}
