package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show preset store status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	info, _ := os.Stat(dbPath)
	var fileSize int64
	if info != nil {
		fileSize = info.Size()
	}

	stats, err := d.Stats()
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return printJSON(map[string]any{
			"database":        dbPath,
			"file_size":       fileSize,
			"total_presets":   stats.TotalPresets,
			"unique_tags":     stats.UniqueTags,
			"max_point_count": stats.MaxPoints,
			"tiers":           stats.Tiers,
		})
	default:
		fmt.Printf("Database: %s", dbPath)
		if fileSize > 0 {
			fmt.Printf(" (%s)", humanize.Bytes(uint64(fileSize)))
		}
		fmt.Println()
		fmt.Printf("Presets: %d\n", stats.TotalPresets)
		fmt.Printf("Tags: %d unique\n", stats.UniqueTags)
		if stats.TotalPresets > 0 {
			fmt.Printf("Largest: %s points\n", humanize.Comma(stats.MaxPoints))
		}
		if len(stats.Tiers) > 0 {
			fmt.Println("\nTier breakdown:")
			for _, c := range stats.Tiers {
				fmt.Printf("  %s: %d presets\n", c.Tier, c.Presets)
			}
		}
	}

	return nil
}
