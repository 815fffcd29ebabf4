package recolor

import (
	"fmt"
	"slices"

	"pixproc/pixmap"
)

// rows for RGB input, alpha is passed through when present
var rgbPresets = map[string][3][3]float64{
	"grayscale": {
		{0.299, 0.587, 0.114},
		{0.299, 0.587, 0.114},
		{0.299, 0.587, 0.114},
	},
	"sepia": {
		{0.393, 0.769, 0.189},
		{0.349, 0.686, 0.168},
		{0.272, 0.534, 0.131},
	},
	"identity": {
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	},
}

// PresetNames lists the names accepted by Preset.
func PresetNames() []string {
	names := []string{"invert"}
	for name := range rgbPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Preset builds a named matrix for a buffer with the given component count.
// RGB presets need 3 or 4 components, the fourth being alpha. "invert" works
// on any count and leaves a fourth (alpha) component alone.
func Preset(name string, components int) (*Matrix, error) {
	if components < 1 || components > pixmap.MaxComponents {
		return nil, fmt.Errorf("%w: too many components: %d", pixmap.ErrInvalidArgument, components)
	}

	if name == "invert" {
		m := Identity(components)
		for i := range components {
			if components == 4 && i == 3 {
				continue
			}
			m.Coeffs[i*components+i] = -1
			m.Bias[i] = 255
		}
		return m, nil
	}

	rows, ok := rgbPresets[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown matrix preset %q", pixmap.ErrInvalidArgument, name)
	}
	if components != 3 && components != 4 {
		return nil, fmt.Errorf("%w: preset %q needs 3 or 4 components, got %d", pixmap.ErrInvalidArgument, name, components)
	}

	m := Identity(components)
	for i, row := range rows {
		copy(m.Coeffs[i*components:], row[:])
	}
	return m, nil
}
