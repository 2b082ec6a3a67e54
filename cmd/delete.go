package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	presetCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	d, err := openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	id, err := resolveArg(d, args[0])
	if err != nil {
		return err
	}

	if err := d.DeletePreset(id); err != nil {
		return err
	}

	fmt.Printf("Deleted: %s\n", id)
	return nil
}
