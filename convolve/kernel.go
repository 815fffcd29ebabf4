package convolve

import (
	"fmt"
	"math"

	"pixproc/pixmap"
)

// Kernel is a rectangular filter. The anchor is the cell aligned with the
// output pixel.
type Kernel struct {
	// Weights holds Height rows of Width weights.
	Weights []float64
	Width   int
	Height  int
	AnchorX int
	AnchorY int
}

type kernelConfig struct {
	width, height    int
	anchorX, anchorY int
	sized, anchored  bool
}

// KernelOption configures NewKernel.
type KernelOption func(*kernelConfig)

// WithSize sets the kernel dimensions. Without it the kernel is square.
func WithSize(width, height int) KernelOption {
	return func(c *kernelConfig) {
		c.width, c.height = width, height
		c.sized = true
	}
}

// WithAnchor sets the anchor cell. Without it the anchor is the kernel center.
func WithAnchor(x, y int) KernelOption {
	return func(c *kernelConfig) {
		c.anchorX, c.anchorY = x, y
		c.anchored = true
	}
}

// NewKernel validates weights against the requested geometry.
func NewKernel(weights []float64, opts ...KernelOption) (*Kernel, error) {
	var conf kernelConfig
	for _, opt := range opts {
		opt(&conf)
	}

	if !conf.sized {
		side := int(math.Sqrt(float64(len(weights))))
		conf.width, conf.height = side, side
	}
	if conf.width < 1 || conf.height < 1 || conf.width*conf.height != len(weights) {
		return nil, fmt.Errorf("%w: kernel %dx%d does not match %d weights",
			pixmap.ErrInvalidArgument, conf.width, conf.height, len(weights))
	}

	if !conf.anchored {
		conf.anchorX, conf.anchorY = conf.width/2, conf.height/2
	}
	if conf.anchorX < 0 || conf.anchorX >= conf.width || conf.anchorY < 0 || conf.anchorY >= conf.height {
		return nil, fmt.Errorf("%w: anchor (%d,%d) outside %dx%d kernel",
			pixmap.ErrInvalidArgument, conf.anchorX, conf.anchorY, conf.width, conf.height)
	}

	return &Kernel{
		Weights: weights,
		Width:   conf.width,
		Height:  conf.height,
		AnchorX: conf.anchorX,
		AnchorY: conf.anchorY,
	}, nil
}

func (k *Kernel) check() error {
	switch {
	case k == nil:
		return fmt.Errorf("%w: no kernel", pixmap.ErrInvalidArgument)
	case k.Width < 1 || k.Height < 1 || k.Width*k.Height != len(k.Weights):
		return fmt.Errorf("%w: kernel %dx%d does not match %d weights",
			pixmap.ErrInvalidArgument, k.Width, k.Height, len(k.Weights))
	case k.AnchorX < 0 || k.AnchorX >= k.Width || k.AnchorY < 0 || k.AnchorY >= k.Height:
		return fmt.Errorf("%w: anchor (%d,%d) outside %dx%d kernel",
			pixmap.ErrInvalidArgument, k.AnchorX, k.AnchorY, k.Width, k.Height)
	}
	return nil
}

func (k *Kernel) at(i, j int) float64 {
	return k.Weights[j*k.Width+i]
}

// Sum is the total weight of the kernel.
func (k *Kernel) Sum() float64 {
	var sum float64
	for _, w := range k.Weights {
		sum += w
	}
	return sum
}
