package convolve

import (
	"fmt"
	"maps"
	"slices"

	"pixproc/pixmap"
)

var presets = map[string][]float64{
	"box3": {
		1, 1, 1,
		1, 1, 1,
		1, 1, 1,
	},
	"box5": {
		1, 1, 1, 1, 1,
		1, 1, 1, 1, 1,
		1, 1, 1, 1, 1,
		1, 1, 1, 1, 1,
		1, 1, 1, 1, 1,
	},
	"gaussian3": {
		1, 2, 1,
		2, 4, 2,
		1, 2, 1,
	},
	"gaussian5": {
		1, 4, 6, 4, 1,
		4, 16, 24, 16, 4,
		6, 24, 36, 24, 6,
		4, 16, 24, 16, 4,
		1, 4, 6, 4, 1,
	},
	"sharpen": {
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0,
	},
	"emboss": {
		-2, -1, 0,
		-1, 1, 1,
		0, 1, 2,
	},
}

// PresetNames lists the names accepted by Preset.
func PresetNames() []string {
	return slices.Sorted(maps.Keys(presets))
}

// Preset returns a centered square kernel by name.
func Preset(name string) (*Kernel, error) {
	weights, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kernel preset %q", pixmap.ErrInvalidArgument, name)
	}
	return NewKernel(slices.Clone(weights))
}
