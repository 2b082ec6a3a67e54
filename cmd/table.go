package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/ifs"
	"github.com/zate/ifsgen/internal/report"
)

var (
	tableTransforms string
	tableIterations string
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print a growth table of point counts",
	Long: `Print point counts for a grid of transform counts and iteration depths.

Ranges are written as "from-to" or a single number and must stay within the
supported limits.`,
	RunE: runTable,
}

func init() {
	tableCmd.Flags().StringVarP(&tableTransforms, "transforms", "t",
		fmt.Sprintf("%d-%d", ifs.MinTransforms, ifs.MaxTransforms), "Transform count range")
	tableCmd.Flags().StringVarP(&tableIterations, "iterations", "i",
		fmt.Sprintf("%d-%d", ifs.MinIterations, ifs.MaxIterations), "Iteration range")
	rootCmd.AddCommand(tableCmd)
}

func runTable(cmd *cobra.Command, args []string) error {
	tFrom, tTo, err := parseRange(tableTransforms)
	if err != nil {
		return fmt.Errorf("invalid --transforms: %w", err)
	}
	iFrom, iTo, err := parseRange(tableIterations)
	if err != nil {
		return fmt.Errorf("invalid --iterations: %w", err)
	}

	// Both corners in range means every cell is.
	if err := ifs.EnforceIterationLimits(tFrom, iFrom); err != nil {
		return err
	}
	if err := ifs.EnforceIterationLimits(tTo, iTo); err != nil {
		return err
	}

	table, err := ifs.GrowthTable(ifs.Span(tFrom, tTo), ifs.Span(iFrom, iTo))
	if err != nil {
		return err
	}

	if format == "json" {
		return printJSON(table)
	}
	fmt.Print(report.RenderGrowthTable(table, format))
	return nil
}

// parseRange parses "3" or "2-6" into inclusive bounds.
func parseRange(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	lo, hi, found := strings.Cut(s, "-")
	from, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("bad range %q", s)
	}
	to := from
	if found {
		to, err = strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return 0, 0, fmt.Errorf("bad range %q", s)
		}
	}
	if to < from {
		return 0, 0, fmt.Errorf("range %q is reversed", s)
	}
	return from, to, nil
}
