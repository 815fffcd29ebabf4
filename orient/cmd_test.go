package orient

import (
	"os"
	"path/filepath"
	"testing"

	"pixproc/imgio"
	"pixproc/parallel"
	"pixproc/pixmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, dir, name string, width, height int) []byte {
	t.Helper()
	d, err := pixmap.New(width, height, 3, 0)
	require.NoError(t, err)
	buf := make([]byte, d.Len())
	for i := range buf {
		buf[i] = byte(i)
	}
	require.NoError(t, imgio.Save(buf, d, "png", "png", dir, name))
	return buf
}

func runCmd(t *testing.T, c *CLICmd) error {
	t.Helper()
	require.NoError(t, c.Validate(nil))
	pool := parallel.Start(2)
	return c.Run(pool.Do, pool.Wait)
}

func TestCLICmdAuto(t *testing.T) {
	scan := t.TempDir()
	writeImage(t, scan, "portrait.png", 2, 3)
	landscape := writeImage(t, scan, "landscape.png", 3, 2)

	c := &CLICmd{Scan: scan, Dest: "out", Mode: "auto", Format: "same", Quality: imgio.DefaultQuality}
	require.NoError(t, runCmd(t, c))
	assert.Equal(t, filepath.Join(scan, "out"), c.Dest)

	conf, _, err := imgio.DecodeConfig(filepath.Join(c.Dest, "portrait.png"))
	require.NoError(t, err)
	assert.Equal(t, 3, conf.Width)
	assert.Equal(t, 2, conf.Height)

	got, _, _, err := imgio.Load(filepath.Join(c.Dest, "landscape.png"))
	require.NoError(t, err)
	assert.Equal(t, landscape, got)

	// sources are kept when copying
	assert.FileExists(t, filepath.Join(scan, "portrait.png"))
	assert.FileExists(t, filepath.Join(scan, "landscape.png"))
}

func TestCLICmdModeMove(t *testing.T) {
	scan := t.TempDir()
	src := writeImage(t, scan, "pic.png", 3, 2)

	c := &CLICmd{Scan: scan, Dest: "flipped", Mode: "flipv", Move: true, Format: "bmp", Quality: imgio.DefaultQuality}
	require.NoError(t, runCmd(t, c))
	assert.Equal(t, FlipVertical, c.Transform)

	got, d, imgType, err := imgio.Load(filepath.Join(c.Dest, "pic.bmp"))
	require.NoError(t, err)
	assert.Equal(t, "bmp", imgType)
	assert.Equal(t, src[d.Stride:], got[:d.Stride])
	assert.Equal(t, src[:d.Stride], got[d.Stride:])
	assert.NoFileExists(t, filepath.Join(scan, "pic.png"))
}

func TestCLICmdErrors(t *testing.T) {
	scan := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(scan, "notes.txt"), []byte("not an image"), 0o644))
	writeImage(t, scan, "pic.png", 3, 2)
	require.NoError(t, os.MkdirAll(filepath.Join(scan, "out"), 0o755))
	writeImage(t, filepath.Join(scan, "out"), "pic.png", 1, 1)

	c := &CLICmd{Scan: scan, Dest: "out", Mode: "auto", Format: "same", Quality: imgio.DefaultQuality}
	err := runCmd(t, c)
	assert.ErrorContains(t, err, "error processing 2 files")
}

func TestCLICmdValidate(t *testing.T) {
	c := &CLICmd{Scan: filepath.Join(t.TempDir(), "missing"), Dest: "out", Mode: "auto"}
	assert.Error(t, c.Validate(nil))

	c = &CLICmd{Scan: t.TempDir(), Dest: "out", Mode: "auto", Quality: 0}
	assert.ErrorContains(t, c.Validate(nil), "invalid JPEG quality")

	c = &CLICmd{Scan: t.TempDir(), Dest: "/abs/out", Mode: "sideways", Quality: imgio.DefaultQuality}
	assert.ErrorIs(t, c.Validate(nil), pixmap.ErrInvalidArgument)
	assert.Equal(t, "/abs/out", c.Dest)
}
