// Package nodegroup describes the IFS_Generator node group as plain data for
// the host-side graph builder. It never talks to the host; the builder reads
// Interface to create sockets and a BuildRequest to fill them in.
package nodegroup

import (
	"fmt"

	"github.com/zate/ifsgen/internal/ifs"
	"github.com/zate/ifsgen/internal/preset"
)

// GroupName is the node group the host builder creates or replaces.
const GroupName = "IFS_Generator"

// Socket types used by the group interface.
const (
	SocketGeometry = "NodeSocketGeometry"
	SocketInt      = "NodeSocketInt"
)

// Socket directions.
const (
	In  = "INPUT"
	Out = "OUTPUT"
)

// Socket is one item of the group interface.
type Socket struct {
	Name       string `json:"name"`
	InOut      string `json:"in_out"`
	SocketType string `json:"socket_type"`
	Default    *int   `json:"default,omitempty"`
	Min        *int   `json:"min,omitempty"`
	Max        *int   `json:"max,omitempty"`
}

func intp(v int) *int { return &v }

// Interface returns the group's sockets in creation order. The Iterations
// bounds come from the validator so the host UI and the CLI agree.
func Interface() []Socket {
	return []Socket{
		{Name: "Geometry", InOut: In, SocketType: SocketGeometry},
		{
			Name: "Iterations", InOut: In, SocketType: SocketInt,
			Default: intp(preset.DefaultIterations), Min: intp(ifs.MinIterations), Max: intp(ifs.MaxIterations),
		},
		{Name: "Seed", InOut: In, SocketType: SocketInt, Default: intp(0)},
		{Name: "Instance Mesh", InOut: In, SocketType: SocketGeometry},
		{
			Name: "Output Mode", InOut: In, SocketType: SocketInt,
			Default: intp(preset.OutputPoints), Min: intp(preset.OutputPoints), Max: intp(preset.OutputRealized),
		},
		{Name: "Geometry", InOut: Out, SocketType: SocketGeometry},
	}
}

// BuildRequest is everything the host builder needs for one graph.
type BuildRequest struct {
	GroupName  string             `json:"group_name"`
	Preset     string             `json:"preset"`
	Inputs     map[string]int     `json:"inputs"`
	Transforms []preset.Transform `json:"transforms"`
	Estimate   *ifs.Estimate      `json:"estimate"`
}

// NewBuildRequest validates p and returns the request for it. No request is
// produced for an invalid preset.
func NewBuildRequest(p *preset.Preset) (*BuildRequest, error) {
	est, err := p.Assess()
	if err != nil {
		return nil, fmt.Errorf("cannot build %s for preset %q: %w", GroupName, p.Name, err)
	}

	transforms := make([]preset.Transform, len(p.Transforms))
	copy(transforms, p.Transforms)

	return &BuildRequest{
		GroupName: GroupName,
		Preset:    p.Name,
		Inputs: map[string]int{
			"Iterations":  p.Iterations,
			"Seed":        p.Seed,
			"Output Mode": p.OutputMode,
		},
		Transforms: transforms,
		Estimate:   est,
	}, nil
}
