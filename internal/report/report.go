// Package report renders estimates and presets for terminals and markdown.
package report

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/internal/ifs"
)

// Points formats a point count with thousands separators.
func Points(n *big.Int) string {
	if n == nil {
		return "-"
	}
	// BigComma consumes its argument.
	return humanize.BigComma(new(big.Int).Set(n))
}

// RenderEstimate renders a single estimate as one or two text lines.
func RenderEstimate(e *ifs.Estimate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d transforms × %d iterations = %s points (%s)\n",
		e.TransformCount, e.Iterations, Points(e.PointCount), e.Tier)
	if e.Warning != "" {
		fmt.Fprintf(&b, "warning: %s\n", e.Warning)
	}
	return b.String()
}

// RenderGrowthTable renders a GrowthTable grid. format is "markdown" or
// "text"; rows are transform counts and columns are iterations.
func RenderGrowthTable(table [][]*ifs.Estimate, format string) string {
	if len(table) == 0 || len(table[0]) == 0 {
		return ""
	}
	if format == "markdown" {
		return renderMarkdownTable(table)
	}
	return renderTextTable(table)
}

func renderMarkdownTable(table [][]*ifs.Estimate) string {
	var b strings.Builder

	b.WriteString("| transforms |")
	for _, e := range table[0] {
		fmt.Fprintf(&b, " i=%d |", e.Iterations)
	}
	b.WriteString("\n|---|")
	for range table[0] {
		b.WriteString("---:|")
	}
	b.WriteString("\n")

	for _, row := range table {
		fmt.Fprintf(&b, "| %d |", row[0].TransformCount)
		for _, e := range row {
			cell := Points(e.PointCount)
			if e.Tier == ifs.TierHeavy || e.Tier == ifs.TierExtreme {
				cell = "**" + cell + "**"
			}
			fmt.Fprintf(&b, " %s |", cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderTextTable(table [][]*ifs.Estimate) string {
	width := len("t\\i")
	for _, row := range table {
		for _, e := range row {
			if w := len(Points(e.PointCount)); w > width {
				width = w
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-5s", "t\\i")
	for _, e := range table[0] {
		fmt.Fprintf(&b, " %*d", width, e.Iterations)
	}
	b.WriteString("\n")

	for _, row := range table {
		fmt.Fprintf(&b, "%-5d", row[0].TransformCount)
		for _, e := range row {
			fmt.Fprintf(&b, " %*s", width, Points(e.PointCount))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderPreset renders a stored preset as a standalone markdown document.
func RenderPreset(r *db.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	if r.Description != "" {
		fmt.Fprintf(&b, "*%s*\n\n", r.Description)
	}

	fmt.Fprintf(&b, "- **ID:** `%s`\n", r.ID)
	fmt.Fprintf(&b, "- **Transforms:** %d\n", len(r.Transforms))
	fmt.Fprintf(&b, "- **Iterations:** %d\n", r.Iterations)
	fmt.Fprintf(&b, "- **Seed:** %d\n", r.Seed)
	fmt.Fprintf(&b, "- **Output mode:** %s\n", r.OutputModeName())
	fmt.Fprintf(&b, "- **Point count:** %s (%s)\n", humanize.Comma(r.PointCount), r.Tier)
	if len(r.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** %s\n", strings.Join(r.Tags, ", "))
	}

	b.WriteString("\n## Transforms\n\n")
	b.WriteString("| # | translate | rotate | scale | weight |\n")
	b.WriteString("|---|---|---|---|---:|\n")
	for i, t := range r.Transforms {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %g |\n", i+1, vec(t.Translate), vec(t.Rotate), vec(t.Scale), t.Weight)
	}
	b.WriteString("\n")

	return b.String()
}

func vec(v [3]float64) string {
	return fmt.Sprintf("(%.3g, %.3g, %.3g)", v[0], v[1], v[2])
}
