package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show a preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	presetCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	d, err := openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	id, err := resolveArg(d, args[0])
	if err != nil {
		return err
	}
	rec, err := d.GetPreset(id)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return printJSON(rec)
	case "markdown":
		fmt.Print(report.RenderPreset(rec))
	default:
		fmt.Printf("ID:          %s\n", rec.ID)
		fmt.Printf("Name:        %s\n", rec.Name)
		if rec.Description != "" {
			fmt.Printf("Description: %s\n", rec.Description)
		}
		fmt.Printf("Transforms:  %d\n", len(rec.Transforms))
		fmt.Printf("Iterations:  %d\n", rec.Iterations)
		fmt.Printf("Seed:        %d\n", rec.Seed)
		fmt.Printf("Output:      %s\n", rec.OutputModeName())
		fmt.Printf("Points:      %s (%s)\n", humanize.Comma(rec.PointCount), rec.Tier)
		fmt.Printf("Created:     %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated:     %s\n", rec.UpdatedAt.Format("2006-01-02 15:04:05"))
		if len(rec.Tags) > 0 {
			fmt.Printf("Tags:        %s\n", strings.Join(rec.Tags, ", "))
		}
	}

	return nil
}
