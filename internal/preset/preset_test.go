package preset_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zate/ifsgen/internal/ifs"
	"github.com/zate/ifsgen/internal/preset"
)

func transforms(n int) []preset.Transform {
	out := make([]preset.Transform, n)
	for i := range out {
		out[i] = preset.Transform{Scale: [3]float64{0.5, 0.5, 0.5}, Weight: 1}
	}
	return out
}

func TestValidate_OK(t *testing.T) {
	p := &preset.Preset{Name: "ok", Transforms: transforms(4), Iterations: 8}
	assert.NoError(t, p.Validate())
}

func TestValidate_LimitErrorsPassThrough(t *testing.T) {
	p := &preset.Preset{Name: "too-many", Transforms: transforms(9), Iterations: 20}
	err := p.Validate()

	var le *ifs.LimitError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ifs.FieldTransformCount, le.Field)
	assert.Equal(t, 9, le.Value)

	p = &preset.Preset{Name: "", Transforms: nil, Iterations: 4}
	err = p.Validate()
	assert.True(t, ifs.IsKind(err, ifs.BelowMinimum))
	assert.Contains(t, err.Error(), "transform count must be at least 1 (got 0)")
}

func TestValidate_Fields(t *testing.T) {
	p := &preset.Preset{Name: " ", Transforms: transforms(2), Iterations: 4}
	assert.ErrorContains(t, p.Validate(), "name")

	p = &preset.Preset{Name: "x", Transforms: transforms(2), Iterations: 4, OutputMode: 3}
	assert.ErrorContains(t, p.Validate(), "output mode")

	ts := transforms(2)
	ts[1].Weight = -1
	p = &preset.Preset{Name: "x", Transforms: ts, Iterations: 4}
	assert.ErrorContains(t, p.Validate(), "transform 2")

	ts = transforms(2)
	ts[0].Weight, ts[1].Weight = 0, 0
	p = &preset.Preset{Name: "x", Transforms: ts, Iterations: 4}
	assert.ErrorContains(t, p.Validate(), "sum to zero")
}

func TestAssess(t *testing.T) {
	p := &preset.Preset{Name: "x", Transforms: transforms(3), Iterations: 8}
	est, err := p.Assess()
	require.NoError(t, err)
	assert.Equal(t, int64(6561), est.PointCount.Int64())

	n, err := p.PointCount()
	require.NoError(t, err)
	assert.Equal(t, int64(6561), n.Int64())
}

func TestParseYAML_Defaults(t *testing.T) {
	data := []byte(`
name: fern
transforms:
  - translate: [0, 1.6, 0]
    scale: [0.85, 0.85, 1]
  - weight: 2
`)
	p, err := preset.Parse(data, ".yml")
	require.NoError(t, err)
	assert.Equal(t, "fern", p.Name)
	assert.Equal(t, preset.DefaultIterations, p.Iterations)
	require.Len(t, p.Transforms, 2)
	assert.Equal(t, 1.0, p.Transforms[0].Weight)
	assert.Equal(t, [3]float64{1, 1, 1}, p.Transforms[1].Scale)
	assert.Equal(t, 2.0, p.Transforms[1].Weight)
	assert.NoError(t, p.Validate())
}

func TestParse_ExplicitZeroWeight(t *testing.T) {
	yamlDoc := []byte(`
name: flat
iterations: 4
transforms:
  - weight: 0
  - weight: 0
`)
	p, err := preset.Parse(yamlDoc, "yaml")
	require.NoError(t, err)
	require.Len(t, p.Transforms, 2)
	assert.Equal(t, 0.0, p.Transforms[0].Weight)
	assert.Equal(t, [3]float64{1, 1, 1}, p.Transforms[0].Scale)
	assert.ErrorIs(t, p.Validate(), preset.ErrInvalid)
	assert.ErrorContains(t, p.Validate(), "sum to zero")

	jsonDoc := []byte(`{"name": "flat", "iterations": 4, "transforms": [{"weight": 0}, {}]}`)
	p, err = preset.Parse(jsonDoc, "json")
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Transforms[0].Weight)
	assert.Equal(t, 1.0, p.Transforms[1].Weight)
	assert.NoError(t, p.Validate())
}

func TestParse_Errors(t *testing.T) {
	_, err := preset.Parse([]byte("{"), "json")
	assert.Error(t, err)

	_, err = preset.Parse([]byte("name: x"), "toml")
	assert.ErrorContains(t, err, "unsupported")
}

func TestLoadAndMarshalRoundTrip(t *testing.T) {
	orig, err := preset.Builtin("sierpinski-triangle")
	require.NoError(t, err)

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			data, err := preset.Marshal(orig, format)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "p."+format)
			require.NoError(t, os.WriteFile(path, data, 0644))

			loaded, err := preset.Load(path)
			require.NoError(t, err)
			assert.Equal(t, orig, loaded)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := preset.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuiltins_AllValid(t *testing.T) {
	names := preset.BuiltinNames()
	assert.Equal(t, []string{"cantor-dust", "sierpinski-tetrahedron", "sierpinski-triangle", "vicsek"}, names)

	for _, p := range preset.Builtins() {
		assert.NoError(t, p.Validate(), p.Name)
	}

	dust, err := preset.Builtin("cantor-dust")
	require.NoError(t, err)
	assert.Len(t, dust.Transforms, ifs.MaxTransforms)
	assert.Equal(t, "instanced", dust.OutputModeName())

	_, err = preset.Builtin("menger-sponge")
	assert.ErrorIs(t, err, preset.ErrUnknownBuiltin)
}

func TestBuiltin_ReturnsCopy(t *testing.T) {
	a, _ := preset.Builtin("vicsek")
	a.Iterations = 1
	b, _ := preset.Builtin("vicsek")
	assert.Equal(t, 6, b.Iterations)
}
