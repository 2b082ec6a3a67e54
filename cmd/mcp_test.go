package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zate/ifsgen/internal/db"
)

func setupMCPTest(t *testing.T) {
	t.Helper()
	dbPath = filepath.Join(t.TempDir(), "test.db")
	// Open once to run migrations
	d, err := db.Open(dbPath)
	require.NoError(t, err)
	d.Close()
}

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	return result.Content[0].(mcp.TextContent).Text
}

const gasketYAML = `name: gasket
description: three half-scale copies
iterations: 6
transforms:
  - scale: [0.5, 0.5, 0.5]
  - translate: [0.5, 0, 0]
    scale: [0.5, 0.5, 0.5]
  - translate: [0.25, 0.5, 0]
    scale: [0.5, 0.5, 0.5]
`

func saveGasket(t *testing.T) {
	t.Helper()
	result, err := handlePresetSave(context.Background(), makeReq(map[string]interface{}{
		"definition": gasketYAML,
		"tags":       "2d, classic",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
}

func TestHandleEstimate(t *testing.T) {
	result, err := handleEstimate(context.Background(), makeReq(map[string]interface{}{
		"transforms": float64(8),
		"iterations": float64(12),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, "68,719,476,736")
	assert.Contains(t, text, "extreme")
	assert.Contains(t, text, "warning:")
}

func TestHandleEstimate_OutOfRange(t *testing.T) {
	result, err := handleEstimate(context.Background(), makeReq(map[string]interface{}{
		"transforms": 10,
		"iterations": 15,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "maximum 8 transforms (got 10)")
}

func TestHandleEstimate_Unchecked(t *testing.T) {
	result, err := handleEstimate(context.Background(), makeReq(map[string]interface{}{
		"transforms": 10,
		"iterations": 15,
		"unchecked":  true,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "1,000,000,000,000,000")

	result, err = handleEstimate(context.Background(), makeReq(map[string]interface{}{
		"transforms": -1,
		"iterations": 2,
		"unchecked":  true,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "below_minimum")

	result, err = handleEstimate(context.Background(), makeReq(map[string]interface{}{
		"transforms": 8,
		"iterations": 2000000000,
		"unchecked":  true,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "point count too large")
}

func TestHandleEstimate_MissingArgs(t *testing.T) {
	result, err := handleEstimate(context.Background(), makeReq(map[string]interface{}{
		"transforms": 3,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleValidate(t *testing.T) {
	result, err := handleValidate(context.Background(), makeReq(map[string]interface{}{
		"transforms": 1,
		"iterations": 1,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "ok")

	result, err = handleValidate(context.Background(), makeReq(map[string]interface{}{
		"transforms": 4,
		"iterations": 0,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, "iterations must be at least 1 (got 0)")
	assert.Contains(t, text, "below_minimum iterations=0")
}

func TestHandleLimits(t *testing.T) {
	result, err := handleLimits(context.Background(), makeReq(nil))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, `"max_transforms": 8`)
	assert.Contains(t, text, `"max_iterations": 12`)
	assert.Contains(t, text, "IFS_Generator")
}

func TestHandlePresetSave_ListShow(t *testing.T) {
	setupMCPTest(t)
	saveGasket(t)

	result, err := handlePresetList(context.Background(), makeReq(map[string]interface{}{}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Found 1 preset(s)")
	assert.Contains(t, text, "gasket: 3×6 = 729 points (light)")
	assert.Contains(t, text, "2d, classic")

	result, err = handlePresetList(context.Background(), makeReq(map[string]interface{}{
		"tag": "3d",
	}))
	require.NoError(t, err)
	assert.Equal(t, "No presets found.", resultText(t, result))

	result, err = handlePresetShow(context.Background(), makeReq(map[string]interface{}{
		"id": "gasket",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "# gasket")
}

func TestHandlePresetSave_Duplicate(t *testing.T) {
	setupMCPTest(t)
	saveGasket(t)

	result, err := handlePresetSave(context.Background(), makeReq(map[string]interface{}{
		"definition": gasketYAML,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "already exists")
}

func TestHandlePresetSave_Invalid(t *testing.T) {
	setupMCPTest(t)

	result, err := handlePresetSave(context.Background(), makeReq(map[string]interface{}{
		"definition": `{"name": "deep", "iterations": 13, "transforms": [{"weight": 1}]}`,
		"format":     "json",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "maximum 12 iterations (got 13)")

	result, err = handlePresetSave(context.Background(), makeReq(map[string]interface{}{
		"definition": "name: [broken",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandlePresetShow_NotFound(t *testing.T) {
	setupMCPTest(t)

	result, err := handlePresetShow(context.Background(), makeReq(map[string]interface{}{
		"id": "nonexistent",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandlePresetList_Builtin(t *testing.T) {
	result, err := handlePresetList(context.Background(), makeReq(map[string]interface{}{
		"builtin": true,
	}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "sierpinski-triangle")
	assert.Contains(t, text, "cantor-dust")
}

func TestHandlePlan(t *testing.T) {
	setupMCPTest(t)
	saveGasket(t)

	result, err := handlePlan(context.Background(), makeReq(map[string]interface{}{
		"id": "gasket",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, `"group_name": "IFS_Generator"`)
	assert.Contains(t, text, `"Iterations": 6`)
	assert.Contains(t, text, `"point_count": 729`)
}

func TestHandlePlan_Builtin(t *testing.T) {
	result, err := handlePlan(context.Background(), makeReq(map[string]interface{}{
		"id":      "sierpinski-tetrahedron",
		"builtin": true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"preset": "sierpinski-tetrahedron"`)

	result, err = handlePlan(context.Background(), makeReq(map[string]interface{}{
		"id":      "mandelbrot",
		"builtin": true,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "available:")
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitAndTrim("a, b , c"))
	assert.Equal(t, []string{"single"}, splitAndTrim("single"))
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim("a,,b,"))
}

func TestParseRange(t *testing.T) {
	from, to, err := parseRange("2-4")
	require.NoError(t, err)
	assert.Equal(t, 2, from)
	assert.Equal(t, 4, to)

	from, to, err = parseRange("5")
	require.NoError(t, err)
	assert.Equal(t, 5, from)
	assert.Equal(t, 5, to)

	_, _, err = parseRange("4-2")
	assert.Error(t, err)

	_, _, err = parseRange("x-3")
	assert.Error(t, err)
}
