package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/db"
)

var importMerge bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a preset bundle from JSON (reads stdin)",
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "Skip existing or invalid presets instead of failing")
	presetCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	d, err := openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	var imp exportData
	if err := json.Unmarshal(data, &imp); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	imported, skipped := 0, 0
	for _, e := range imp.Presets {
		if _, err := d.GetPresetByName(e.Name); err == nil {
			if !importMerge {
				return fmt.Errorf("preset %q already exists", e.Name)
			}
			logrus.WithField("preset", e.Name).Info("skipping existing preset")
			skipped++
			continue
		}

		if _, err := d.CreatePreset(db.CreatePresetInput{Preset: e.Preset, Tags: e.Tags}); err != nil {
			if !importMerge {
				return fmt.Errorf("failed to import preset %q: %w", e.Name, err)
			}
			logrus.WithError(err).WithField("preset", e.Name).Warn("skipping invalid preset")
			skipped++
			continue
		}
		imported++
	}

	fmt.Printf("Imported: %d presets (%d skipped)\n", imported, skipped)
	return nil
}
