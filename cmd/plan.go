package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/nodegroup"
	"github.com/zate/ifsgen/internal/preset"
	"github.com/zate/ifsgen/internal/report"
)

var planBuiltin bool

var planCmd = &cobra.Command{
	Use:   "plan <id|name>",
	Short: "Produce the IFS_Generator build request for a preset",
	Long: `Validate a preset and print the build request a host would use to create
the IFS_Generator node group: socket inputs, transforms, and the point
estimate. Nothing is produced for a preset outside the limits.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planBuiltin, "builtin", false, "Plan a built-in preset instead of a stored one")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	p, err := planPreset(args[0])
	if err != nil {
		return err
	}

	req, err := nodegroup.NewBuildRequest(p)
	if err != nil {
		return err
	}

	if format == "json" {
		return printJSON(req)
	}
	fmt.Printf("%s for %s\n", req.GroupName, req.Preset)
	for _, s := range nodegroup.Interface() {
		if v, ok := req.Inputs[s.Name]; ok {
			fmt.Printf("  %-12s %d\n", s.Name, v)
		}
	}
	fmt.Printf("  %-12s %d\n", "Transforms", len(req.Transforms))
	fmt.Print(report.RenderEstimate(req.Estimate))
	return nil
}

func planPreset(arg string) (*preset.Preset, error) {
	if planBuiltin {
		return preset.Builtin(arg)
	}

	d, err := openDB()
	if err != nil {
		return nil, err
	}
	defer d.Close()

	id, err := resolveArg(d, arg)
	if err != nil {
		return nil, err
	}
	rec, err := d.GetPreset(id)
	if err != nil {
		return nil, err
	}
	return &rec.Preset, nil
}
