package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/internal/preset"
)

var exportTag string

var exportCmd = &cobra.Command{
	Use:   "export [id|name]",
	Short: "Export presets",
	Long: `Export one preset as a preset file (YAML, or JSON with --format json),
or every stored preset as a JSON bundle that "preset import" reads back.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportTag, "tag", "", "Only export presets with this tag")
	presetCmd.AddCommand(exportCmd)
}

type exportData struct {
	Presets []exportEntry `json:"presets"`
}

type exportEntry struct {
	preset.Preset
	Tags []string `json:"tags,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
	d, err := openDB()
	if err != nil {
		return err
	}
	defer d.Close()

	if len(args) == 1 {
		id, err := resolveArg(d, args[0])
		if err != nil {
			return err
		}
		rec, err := d.GetPreset(id)
		if err != nil {
			return err
		}
		data, err := preset.Marshal(&rec.Preset, outputPresetFormat())
		if err != nil {
			return err
		}
		fmt.Println(strings.TrimRight(string(data), "\n"))
		return nil
	}

	records, err := d.ListPresets(db.ListOptions{Tag: exportTag})
	if err != nil {
		return err
	}

	out := exportData{Presets: []exportEntry{}}
	for _, r := range records {
		out.Presets = append(out.Presets, exportEntry{Preset: r.Preset, Tags: r.Tags})
	}
	return printJSON(out)
}
