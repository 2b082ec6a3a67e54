package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/ifs"
	"github.com/zate/ifsgen/internal/report"
)

var (
	estimateTransforms int
	estimateIterations int
	estimateUnchecked  bool

	validateTransforms int
	validateIterations int
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the point count for a transform count and iteration depth",
	Long: `Estimate the maximum number of points an IFS produces: transforms^iterations.

Parameters are checked against the supported envelope first unless
--unchecked is given, in which case the exact count is printed for any
non-negative inputs.`,
	RunE: runEstimate,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a transform count and iteration depth against the limits",
	RunE:  runValidate,
}

func init() {
	estimateCmd.Flags().IntVarP(&estimateTransforms, "transforms", "t", 0, "Number of transforms (required)")
	estimateCmd.Flags().IntVarP(&estimateIterations, "iterations", "i", 0, "Iteration depth (required)")
	estimateCmd.Flags().BoolVar(&estimateUnchecked, "unchecked", false, "Skip the limits check")
	estimateCmd.MarkFlagRequired("transforms")
	estimateCmd.MarkFlagRequired("iterations")
	rootCmd.AddCommand(estimateCmd)

	validateCmd.Flags().IntVarP(&validateTransforms, "transforms", "t", 0, "Number of transforms (required)")
	validateCmd.Flags().IntVarP(&validateIterations, "iterations", "i", 0, "Iteration depth (required)")
	validateCmd.MarkFlagRequired("transforms")
	validateCmd.MarkFlagRequired("iterations")
	rootCmd.AddCommand(validateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if estimateUnchecked {
		n, err := ifs.CalculatePointCount(estimateTransforms, estimateIterations)
		if err != nil {
			return err
		}
		switch format {
		case "json":
			return printJSON(map[string]any{
				"transform_count": estimateTransforms,
				"iterations":      estimateIterations,
				"point_count":     n,
			})
		default:
			fmt.Printf("%d transforms × %d iterations = %s points\n",
				estimateTransforms, estimateIterations, report.Points(n))
		}
		return nil
	}

	est, err := ifs.Assess(estimateTransforms, estimateIterations)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return printJSON(est)
	default:
		fmt.Print(report.RenderEstimate(est))
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	err := ifs.EnforceIterationLimits(validateTransforms, validateIterations)

	if format == "json" {
		out := map[string]any{"valid": err == nil}
		var le *ifs.LimitError
		if errors.As(err, &le) {
			out["error"] = err.Error()
			out["kind"] = le.Kind
			out["field"] = le.Field
			out["value"] = le.Value
		}
		if perr := printJSON(out); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}
	if format != "json" {
		fmt.Printf("ok: %d transforms, %d iterations\n", validateTransforms, validateIterations)
	}
	return nil
}
