package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/internal/preset"
	"github.com/zate/ifsgen/internal/report"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage stored IFS presets",
}

var (
	builtinSave bool
	builtinTags []string
)

var presetBuiltinCmd = &cobra.Command{
	Use:   "builtin [name]",
	Short: "List built-in presets, show one, or save it to the store",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPresetBuiltin,
}

func init() {
	presetBuiltinCmd.Flags().BoolVar(&builtinSave, "save", false, "Save the built-in preset to the store")
	presetBuiltinCmd.Flags().StringArrayVar(&builtinTags, "tag", nil, "Tags when saving (repeatable)")
	presetCmd.AddCommand(presetBuiltinCmd)
	rootCmd.AddCommand(presetCmd)
}

func runPresetBuiltin(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if format == "json" {
			return printJSON(preset.Builtins())
		}
		for _, p := range preset.Builtins() {
			n, _ := p.PointCount()
			fmt.Printf("%-24s %d transforms × %d iterations = %s points\n",
				p.Name, len(p.Transforms), p.Iterations, report.Points(n))
		}
		return nil
	}

	p, err := preset.Builtin(args[0])
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(preset.BuiltinNames(), ", "))
	}

	if !builtinSave {
		data, err := preset.Marshal(p, outputPresetFormat())
		if err != nil {
			return err
		}
		fmt.Println(strings.TrimRight(string(data), "\n"))
		return nil
	}

	d, err := openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	rec, err := d.CreatePreset(db.CreatePresetInput{Preset: *p, Tags: builtinTags})
	if err != nil {
		return err
	}
	printSaved(rec)
	return nil
}

// outputPresetFormat maps --format onto a preset file encoding.
func outputPresetFormat() string {
	if format == "json" {
		return "json"
	}
	return "yaml"
}

func printSaved(rec *db.Record) {
	switch format {
	case "json":
		_ = printJSON(rec)
	default:
		fmt.Printf("Added: %s %s (%s points, %s)\n",
			shortID(rec.ID), rec.Name, humanize.Comma(rec.PointCount), rec.Tier)
	}
}
