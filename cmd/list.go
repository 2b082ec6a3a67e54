package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/internal/query"
)

var (
	listTag   string
	listQuery string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored presets",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by tag")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Filter expression (e.g. 'tier:heavy AND transforms:>=4')")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Limit results")
	presetCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	d, err := openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	records, err := query.ExecuteQuery(d, listQuery, db.ListOptions{
		Tag:   listTag,
		Limit: listLimit,
	})
	if err != nil {
		return err
	}

	switch format {
	case "json":
		if records == nil {
			records = []*db.Record{}
		}
		return printJSON(records)
	case "markdown":
		fmt.Println("| id | name | transforms | iterations | points | tier |")
		fmt.Println("|---|---|---:|---:|---:|---|")
		for _, r := range records {
			fmt.Printf("| `%s` | %s | %d | %d | %s | %s |\n",
				shortID(r.ID), r.Name, len(r.Transforms), r.Iterations, humanize.Comma(r.PointCount), r.Tier)
		}
	default:
		if len(records) == 0 {
			fmt.Println("No presets found.")
			return nil
		}
		for _, r := range records {
			tags := ""
			if len(r.Tags) > 0 {
				tags = " [" + strings.Join(r.Tags, ", ") + "]"
			}
			fmt.Printf("[%s] %s: %d×%d = %s points (%s)%s\n",
				shortID(r.ID), r.Name, len(r.Transforms), r.Iterations, humanize.Comma(r.PointCount), r.Tier, tags)
		}
	}

	return nil
}
