package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/internal/preset"
)

var (
	updateDescription string
	updateIterations  int
	updateSeed        int
	updateOutputMode  int
	updateFile        string
)

var updateCmd = &cobra.Command{
	Use:   "update <id|name>",
	Short: "Update a preset",
	Long: `Update fields of a stored preset. Only flags that are given change.
--transforms-from replaces the transform list with the one in a preset file.
The updated preset is validated before it is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "New description")
	updateCmd.Flags().IntVar(&updateIterations, "iterations", 0, "New iteration depth")
	updateCmd.Flags().IntVar(&updateSeed, "seed", 0, "New seed")
	updateCmd.Flags().IntVar(&updateOutputMode, "output-mode", 0, "New output mode: 0 points, 1 instanced, 2 realized")
	updateCmd.Flags().StringVar(&updateFile, "transforms-from", "", "Preset file to take transforms from")
	presetCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	d, err := openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	id, err := resolveArg(d, args[0])
	if err != nil {
		return err
	}

	input := db.UpdatePresetInput{}
	flags := cmd.Flags()
	if flags.Changed("description") {
		input.Description = &updateDescription
	}
	if flags.Changed("iterations") {
		input.Iterations = &updateIterations
	}
	if flags.Changed("seed") {
		input.Seed = &updateSeed
	}
	if flags.Changed("output-mode") {
		input.OutputMode = &updateOutputMode
	}
	if updateFile != "" {
		src, err := preset.Load(updateFile)
		if err != nil {
			return err
		}
		input.Transforms = src.Transforms
	}

	rec, err := d.UpdatePreset(id, input)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return printJSON(rec)
	default:
		fmt.Printf("Updated: %s (%s points, %s)\n", rec.ID, humanize.Comma(rec.PointCount), rec.Tier)
	}

	return nil
}
