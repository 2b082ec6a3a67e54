package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/internal/preset"
)

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add a preset from a YAML or JSON file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAdd,
}

var (
	addName        string
	addTags        []string
	addStdin       bool
	addInputFormat string
)

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "Override the preset name")
	addCmd.Flags().StringArrayVar(&addTags, "tag", nil, "Tags (repeatable)")
	addCmd.Flags().BoolVar(&addStdin, "stdin", false, "Read the preset from stdin")
	addCmd.Flags().StringVar(&addInputFormat, "input-format", "yaml", "Preset encoding when reading stdin: yaml, json")
	presetCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	var p *preset.Preset
	var err error
	switch {
	case addStdin:
		data, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			return fmt.Errorf("failed to read stdin: %w", rerr)
		}
		p, err = preset.Parse(data, addInputFormat)
	case len(args) > 0:
		p, err = preset.Load(args[0])
	default:
		return fmt.Errorf("a preset file is required (provide as argument or use --stdin)")
	}
	if err != nil {
		return err
	}
	if addName != "" {
		p.Name = addName
	}

	d, err := openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	if _, err := d.GetPresetByName(p.Name); err == nil {
		return fmt.Errorf("preset %q already exists", p.Name)
	}

	rec, err := d.CreatePreset(db.CreatePresetInput{Preset: *p, Tags: addTags})
	if err != nil {
		return err
	}
	printSaved(rec)
	return nil
}
