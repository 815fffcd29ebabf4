package mangle

import (
	"log/slog"
	"sync"

	"pixproc/convolve"
	"pixproc/pixmap"
	"pixproc/recolor"
)

// recolor applies the colour matrix then the channel permutation, if any.
func (c *CLICmd) recolor(logger *slog.Logger, buf []byte, d pixmap.Descriptor) error {
	var m *recolor.Matrix
	switch {
	case c.Matrix != "":
		var err error
		if m, err = recolor.Preset(c.Matrix, d.Components); err != nil {
			return err
		}
	case len(c.Coeffs) > 0:
		m = &recolor.Matrix{Coeffs: c.Coeffs, Bias: c.Bias}
		if m.Bias == nil {
			m.Bias = make([]float64, d.Components)
		}
	}
	if m != nil {
		logger.Info("applying colour matrix", "preset", c.Matrix, "components", d.Components)
		if err := recolor.ComponentMatrix(buf, d, m); err != nil {
			return err
		}
	}

	if c.Swap != "" {
		logger.Info("swapping channels", "order", c.Swap)
		// a nil permutation reverses the channels
		return recolor.ComponentSwap(buf, d, c.Perm)
	}
	return nil
}

// convolve filters the image in place with the configured kernel.
func (c *CLICmd) convolve(logger *slog.Logger, buf []byte, d pixmap.Descriptor) error {
	if c.Filter == nil {
		return nil
	}

	scratch := getScratch(convolve.ScratchSize(d, c.Filter))
	defer scratchPool.Put(scratch)

	opts := []convolve.Option{convolve.WithScratch(*scratch)}
	if len(c.Range) == 2 {
		opts = append(opts, convolve.WithComponents(c.Range[0], c.Range[1]))
	}

	logger.Info("filtering", "kernel", c.Kernel, "width", c.Filter.Width, "height", c.Filter.Height)
	return convolve.Apply(buf, d, c.Filter, opts...)
}

// ring rows for the in-place filter, shared by the workers
var scratchPool = sync.Pool{
	New: func() any {
		return new([]byte)
	},
}

func getScratch(size int) *[]byte {
	buf := scratchPool.Get().(*[]byte)
	if cap(*buf) < size {
		*buf = make([]byte, size)
	}
	*buf = (*buf)[:size]
	return buf
}
