package preset

import (
	"errors"
	"sort"
)

// ErrUnknownBuiltin is returned by Builtin for names it does not know.
var ErrUnknownBuiltin = errors.New("unknown built-in preset")

func half(x, y, z float64) Transform {
	return Transform{Translate: [3]float64{x, y, z}, Scale: [3]float64{0.5, 0.5, 0.5}, Weight: 1}
}

func third(x, y, z float64) Transform {
	const s = 1.0 / 3
	return Transform{Translate: [3]float64{x, y, z}, Scale: [3]float64{s, s, s}, Weight: 1}
}

var builtins = map[string]func() *Preset{
	"sierpinski-triangle": func() *Preset {
		return &Preset{
			Name:        "sierpinski-triangle",
			Description: "Planar Sierpinski gasket",
			Transforms:  []Transform{half(0, 0, 0), half(0.5, 0, 0), half(0.25, 0.433, 0)},
			Iterations:  DefaultIterations,
		}
	},
	"sierpinski-tetrahedron": func() *Preset {
		return &Preset{
			Name:        "sierpinski-tetrahedron",
			Description: "Tetrix, the 3D Sierpinski gasket",
			Transforms: []Transform{
				half(0, 0, 0), half(0.5, 0, 0), half(0.25, 0.433, 0), half(0.25, 0.144, 0.408),
			},
			Iterations: DefaultIterations,
		}
	},
	"vicsek": func() *Preset {
		return &Preset{
			Name:        "vicsek",
			Description: "Vicsek cross",
			Transforms: []Transform{
				third(1.0/3, 1.0/3, 0), third(0, 0, 0), third(2.0/3, 0, 0), third(0, 2.0/3, 0), third(2.0/3, 2.0/3, 0),
			},
			Iterations: 6,
		}
	},
	"cantor-dust": func() *Preset {
		var ts []Transform
		for _, x := range []float64{0, 2.0 / 3} {
			for _, y := range []float64{0, 2.0 / 3} {
				for _, z := range []float64{0, 2.0 / 3} {
					ts = append(ts, third(x, y, z))
				}
			}
		}
		return &Preset{
			Name:        "cantor-dust",
			Description: "3D Cantor dust, eight corner cubes",
			Transforms:  ts,
			Iterations:  5,
			OutputMode:  OutputInstanced,
		}
	},
}

// Builtin returns a fresh copy of a built-in preset.
func Builtin(name string) (*Preset, error) {
	fn, ok := builtins[name]
	if !ok {
		return nil, ErrUnknownBuiltin
	}
	return fn(), nil
}

// BuiltinNames lists built-in preset names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins returns every built-in preset, sorted by name.
func Builtins() []*Preset {
	names := BuiltinNames()
	out := make([]*Preset, 0, len(names))
	for _, name := range names {
		out = append(out, builtins[name]())
	}
	return out
}
