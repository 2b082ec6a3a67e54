package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tagsPrefix string

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List all preset tags",
	RunE:  runTags,
}

func init() {
	tagsCmd.Flags().StringVar(&tagsPrefix, "prefix", "", "Filter by prefix")
	presetCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	d, err := openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	all, err := d.ListAllTags()
	if err != nil {
		return err
	}
	tags := []string{}
	for _, t := range all {
		if strings.HasPrefix(t, tagsPrefix) {
			tags = append(tags, t)
		}
	}

	switch format {
	case "json":
		return printJSON(tags)
	default:
		if len(tags) == 0 {
			fmt.Println("No tags found.")
			return nil
		}
		for _, t := range tags {
			fmt.Println(t)
		}
	}

	return nil
}
