package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/zate/ifsgen/internal/ifs"
	"gopkg.in/yaml.v3"
)

// Output modes understood by the node group's Output Mode input.
const (
	OutputPoints    = 0
	OutputInstanced = 1
	OutputRealized  = 2
)

// ErrInvalid wraps preset field errors other than limit violations.
var ErrInvalid = errors.New("invalid preset")

// DefaultIterations matches the node group's Iterations default.
const DefaultIterations = 8

var outputModeNames = map[int]string{
	OutputPoints:    "points",
	OutputInstanced: "instanced",
	OutputRealized:  "realized",
}

// Transform is one affine map of the system. Rotation is in degrees.
type Transform struct {
	Translate [3]float64 `json:"translate" yaml:"translate"`
	Rotate    [3]float64 `json:"rotate" yaml:"rotate"`
	Scale     [3]float64 `json:"scale" yaml:"scale"`
	Weight    float64    `json:"weight" yaml:"weight"`
}

// defaultTransform holds the values a preset file may omit per transform.
func defaultTransform() Transform {
	return Transform{Scale: [3]float64{1, 1, 1}, Weight: 1}
}

// UnmarshalJSON defaults only the fields absent from data, so an explicit
// weight of 0 survives decoding.
func (t *Transform) UnmarshalJSON(data []byte) error {
	type plain Transform
	v := plain(defaultTransform())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Transform(v)
	return nil
}

// UnmarshalYAML is the YAML counterpart of UnmarshalJSON.
func (t *Transform) UnmarshalYAML(node *yaml.Node) error {
	type plain Transform
	v := plain(defaultTransform())
	if err := node.Decode(&v); err != nil {
		return err
	}
	*t = Transform(v)
	return nil
}

// Preset is a named IFS configuration.
type Preset struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Transforms  []Transform `json:"transforms" yaml:"transforms"`
	Iterations  int         `json:"iterations" yaml:"iterations"`
	Seed        int         `json:"seed" yaml:"seed"`
	OutputMode  int         `json:"output_mode" yaml:"output_mode"`
}

// Validate checks the preset. Limit violations come back unchanged from
// ifs.EnforceIterationLimits so callers can match them with errors.As.
func (p *Preset) Validate() error {
	if err := ifs.EnforceIterationLimits(len(p.Transforms), p.Iterations); err != nil {
		return err
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalid)
	}
	if _, ok := outputModeNames[p.OutputMode]; !ok {
		return fmt.Errorf("%w: output mode must be 0-2 (got %d)", ErrInvalid, p.OutputMode)
	}

	var total float64
	for i, t := range p.Transforms {
		if t.Weight < 0 {
			return fmt.Errorf("%w: transform %d weight cannot be negative (got %g)", ErrInvalid, i+1, t.Weight)
		}
		total += t.Weight
	}
	if total == 0 {
		return fmt.Errorf("%w: transform weights sum to zero", ErrInvalid)
	}
	return nil
}

// PointCount is the theoretical maximum point count for this preset.
func (p *Preset) PointCount() (*big.Int, error) {
	return ifs.CalculatePointCount(len(p.Transforms), p.Iterations)
}

// Assess validates the preset and estimates its growth.
func (p *Preset) Assess() (*ifs.Estimate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return ifs.Assess(len(p.Transforms), p.Iterations)
}

// OutputModeName returns the readable name of the output mode.
func (p *Preset) OutputModeName() string {
	if name, ok := outputModeNames[p.OutputMode]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", p.OutputMode)
}

// applyDefaults fills in preset-level fields a file may omit. Per-transform
// defaults are applied while decoding.
func (p *Preset) applyDefaults() {
	if p.Iterations == 0 {
		p.Iterations = DefaultIterations
	}
}

// Load reads a preset file. The format is chosen by extension: .yaml/.yml
// or .json.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset %s: %w", path, err)
	}
	p, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a preset in the given format ("json", "yaml", or a file
// extension) and applies defaults. It does not validate.
func Parse(data []byte, format string) (*Preset, error) {
	var p Preset
	switch normalizeFormat(format) {
	case "json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("invalid preset JSON: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("invalid preset YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported preset format %q", format)
	}
	p.applyDefaults()
	return &p, nil
}

// Marshal encodes a preset as "json" or "yaml".
func Marshal(p *Preset, format string) ([]byte, error) {
	switch normalizeFormat(format) {
	case "json":
		return json.MarshalIndent(p, "", "  ")
	case "yaml":
		return yaml.Marshal(p)
	}
	return nil, fmt.Errorf("unsupported preset format %q", format)
}

func normalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	}
	return ""
}
