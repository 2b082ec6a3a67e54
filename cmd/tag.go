package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag <id|name> <tag>...",
	Short: "Add tags to a preset",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTag,
}

func init() {
	presetCmd.AddCommand(tagCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
	d, err := openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	id, err := resolveArg(d, args[0])
	if err != nil {
		return err
	}
	for _, tag := range args[1:] {
		if err := d.AddTag(id, tag); err != nil {
			return fmt.Errorf("failed to add tag %s: %w", tag, err)
		}
	}

	fmt.Printf("Tagged: %s with %s\n", shortID(id), strings.Join(args[1:], ", "))
	return nil
}
