// Package recolor applies per-pixel channel arithmetic in place: linear colour
// transforms and channel permutations.
package recolor

import (
	"fmt"

	"pixproc/pixmap"
)

// Matrix is a linear transform over the components of a pixel.
type Matrix struct {
	// Coeffs is the components×components matrix in row-major order.
	Coeffs []float64
	// Bias is added to each output component.
	Bias []float64
}

// Identity returns the identity matrix with zero bias for n components.
func Identity(n int) *Matrix {
	m := &Matrix{
		Coeffs: make([]float64, n*n),
		Bias:   make([]float64, n),
	}
	for i := range n {
		m.Coeffs[i*n+i] = 1
	}
	return m
}

func (m *Matrix) check(n int) error {
	if len(m.Coeffs) != n*n {
		return fmt.Errorf("%w: matrix has %d coefficients, want %d", pixmap.ErrInvalidArgument, len(m.Coeffs), n*n)
	}
	if len(m.Bias) != n {
		return fmt.Errorf("%w: bias has %d values, want %d", pixmap.ErrInvalidArgument, len(m.Bias), n)
	}
	return nil
}

// ComponentMatrix replaces every pixel of buf with m applied to it:
// out[i] = clamp(bias[i] + sum(m[i][j] * in[j])), saturated to [0, 255].
// A nil matrix is the identity and leaves buf untouched.
func ComponentMatrix(buf []byte, d pixmap.Descriptor, m *Matrix) error {
	if err := d.Check(buf); err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	n := d.Components
	if err := m.check(n); err != nil {
		return err
	}

	var in pixmap.Vector
	for y := range d.Height {
		row := d.Row(buf, y)
		for off := 0; off < len(row); off += n {
			px := row[off : off+n : off+n]
			in.Load(px)
			for i := range n {
				v := m.Bias[i]
				coeffs := m.Coeffs[i*n : i*n+n]
				for j, c := range coeffs {
					v += c * in[j]
				}
				px[i] = pixmap.ClampByte(v)
			}
		}
	}
	return nil
}
