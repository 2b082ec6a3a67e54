package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/internal/ifs"
	"github.com/zate/ifsgen/internal/nodegroup"
	"github.com/zate/ifsgen/internal/preset"
	"github.com/zate/ifsgen/internal/query"
	"github.com/zate/ifsgen/internal/report"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server for IFS parameter checks and presets",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	s := server.NewMCPServer(
		"ifsgen",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	registerTools(s)

	logrus.WithField("db", dbPath).Info("serving MCP over stdio")
	return server.ServeStdio(s)
}

func mcpOpenDB() (*db.SQLiteStore, error) {
	path := dbPath
	if envDB := os.Getenv("IFSGEN_DB"); envDB != "" && path == "" {
		path = envDB
	}
	return db.Open(path)
}

func registerTools(s *server.MCPServer) {
	// Parameter checks
	s.AddTool(mcp.NewTool("ifs_estimate",
		mcp.WithDescription("Estimate the point count (transforms^iterations) for an IFS, with a load tier and warning"),
		mcp.WithNumber("transforms",
			mcp.Required(),
			mcp.Description("Number of affine transforms (1-8)"),
		),
		mcp.WithNumber("iterations",
			mcp.Required(),
			mcp.Description("Iteration depth (1-12)"),
		),
		mcp.WithBoolean("unchecked",
			mcp.Description("Skip the limits check and return the exact count (default: false)"),
		),
	), handleEstimate)

	s.AddTool(mcp.NewTool("ifs_validate",
		mcp.WithDescription("Check a transform count and iteration depth against the supported limits"),
		mcp.WithNumber("transforms",
			mcp.Required(),
			mcp.Description("Number of affine transforms"),
		),
		mcp.WithNumber("iterations",
			mcp.Required(),
			mcp.Description("Iteration depth"),
		),
	), handleValidate)

	s.AddTool(mcp.NewTool("ifs_limits",
		mcp.WithDescription("Show the supported transform and iteration ranges and the node group sockets"),
	), handleLimits)

	// Presets
	s.AddTool(mcp.NewTool("ifs_preset_list",
		mcp.WithDescription("List stored presets, or built-in presets when builtin is true"),
		mcp.WithString("tag",
			mcp.Description("Filter by tag"),
		),
		mcp.WithString("query",
			mcp.Description("Filter expression, e.g. 'tier:heavy AND transforms:>=4' (keys: name, tag, tier, output, transforms, iterations, points, seed)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results to return (default: 20)"),
		),
		mcp.WithBoolean("builtin",
			mcp.Description("List built-in presets instead of stored ones"),
		),
	), handlePresetList)

	s.AddTool(mcp.NewTool("ifs_preset_show",
		mcp.WithDescription("Show a stored preset as markdown"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Preset ID, ID prefix, or name"),
		),
	), handlePresetShow)

	s.AddTool(mcp.NewTool("ifs_preset_save",
		mcp.WithDescription("Validate and store a preset given as YAML or JSON"),
		mcp.WithString("definition",
			mcp.Required(),
			mcp.Description("Preset document with name, transforms, iterations, seed, output_mode"),
		),
		mcp.WithString("format",
			mcp.Description("Encoding of the definition (default: yaml)"),
			mcp.Enum("yaml", "json"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags"),
		),
	), handlePresetSave)

	s.AddTool(mcp.NewTool("ifs_plan",
		mcp.WithDescription("Produce the IFS_Generator build request for a stored or built-in preset"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Preset ID, ID prefix, or name"),
		),
		mcp.WithBoolean("builtin",
			mcp.Description("Resolve id as a built-in preset name"),
		),
	), handlePlan)
}

// limitResult renders a validation failure as a tool error carrying the
// validator's message verbatim.
func limitResult(err error) *mcp.CallToolResult {
	var le *ifs.LimitError
	if errors.As(err, &le) {
		return mcp.NewToolResultError(fmt.Sprintf("%s [%s %s=%d]", err.Error(), le.Kind, le.Field, le.Value))
	}
	return mcp.NewToolResultError(err.Error())
}

func requireParams(req mcp.CallToolRequest) (int, int, error) {
	t, err := req.RequireInt("transforms")
	if err != nil {
		return 0, 0, err
	}
	i, err := req.RequireInt("iterations")
	if err != nil {
		return 0, 0, err
	}
	return t, i, nil
}

func handleEstimate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, i, err := requireParams(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if req.GetBool("unchecked", false) {
		n, err := ifs.BoundedPointCount(t, i, ifs.MaxUncheckedBits)
		if err != nil {
			return limitResult(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d transforms × %d iterations = %s points (%s)",
			t, i, report.Points(n), n.String())), nil
	}

	est, err := ifs.Assess(t, i)
	if err != nil {
		return limitResult(err), nil
	}
	return mcp.NewToolResultText(report.RenderEstimate(est)), nil
}

func handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, i, err := requireParams(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := ifs.EnforceIterationLimits(t, i); err != nil {
		return limitResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("ok: %d transforms, %d iterations", t, i)), nil
}

func handleLimits(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := map[string]interface{}{
		"limits":     ifs.CurrentLimits(),
		"group_name": nodegroup.GroupName,
		"sockets":    nodegroup.Interface(),
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func handlePresetList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder

	if req.GetBool("builtin", false) {
		for _, p := range preset.Builtins() {
			n, _ := p.PointCount()
			fmt.Fprintf(&b, "- %s: %d transforms × %d iterations = %s points\n",
				p.Name, len(p.Transforms), p.Iterations, report.Points(n))
		}
		return mcp.NewToolResultText(b.String()), nil
	}

	d, err := mcpOpenDB()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}
	defer d.Close()

	records, err := query.ExecuteQuery(d, req.GetString("query", ""), db.ListOptions{
		Tag:   req.GetString("tag", ""),
		Limit: req.GetInt("limit", 20),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list error: %v", err)), nil
	}

	if len(records) == 0 {
		return mcp.NewToolResultText("No presets found."), nil
	}

	fmt.Fprintf(&b, "Found %d preset(s):\n\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "- [%s] %s: %d×%d = %s points (%s)",
			shortID(r.ID), r.Name, len(r.Transforms), r.Iterations, humanize.Comma(r.PointCount), r.Tier)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(r.Tags, ", "))
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handlePresetShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := mcpOpenDB()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}
	defer d.Close()

	arg, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, err := resolveArg(d, arg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := d.GetPreset(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("preset not found: %v", err)), nil
	}
	return mcp.NewToolResultText(report.RenderPreset(rec)), nil
}

func handlePresetSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	definition, err := req.RequireString("definition")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := preset.Parse([]byte(definition), req.GetString("format", "yaml"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := p.Validate(); err != nil {
		return limitResult(err), nil
	}

	d, err := mcpOpenDB()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}
	defer d.Close()

	if existing, err := d.GetPresetByName(p.Name); err == nil {
		return mcp.NewToolResultError(fmt.Sprintf("preset %q already exists (%s)", p.Name, existing.ID)), nil
	}

	var tags []string
	if t := req.GetString("tags", ""); t != "" {
		tags = splitAndTrim(t)
	}

	rec, err := d.CreatePreset(db.CreatePresetInput{Preset: *p, Tags: tags})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save preset: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Stored preset %s %s (%s points, %s)",
		rec.ID, rec.Name, humanize.Comma(rec.PointCount), rec.Tier)), nil
}

func handlePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arg, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var p *preset.Preset
	if req.GetBool("builtin", false) {
		p, err = preset.Builtin(arg)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%v (available: %s)", err, strings.Join(preset.BuiltinNames(), ", "))), nil
		}
	} else {
		d, err := mcpOpenDB()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
		}
		defer d.Close()

		id, err := resolveArg(d, arg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rec, err := d.GetPreset(id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("preset not found: %v", err)), nil
		}
		p = &rec.Preset
	}

	plan, err := nodegroup.NewBuildRequest(p)
	if err != nil {
		return limitResult(err), nil
	}
	data, _ := json.MarshalIndent(plan, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

// helpers

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
