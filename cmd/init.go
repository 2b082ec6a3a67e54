package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/internal/preset"
)

var initSeed bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the ifsgen preset store",
	Long: `Creates the database directory and runs migrations. With --seed the
built-in presets are stored too, tagged "builtin".`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initSeed, "seed", false, "Store the built-in presets")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	d, err := openDB()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer d.Close()

	if initSeed {
		n, err := seedBuiltins(d)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d built-in presets\n", n)
	}

	fmt.Printf("Database ready: %s\n", dbPath)
	return nil
}

// seedBuiltins stores every built-in preset that is not already present by
// name and returns how many were added.
func seedBuiltins(d db.Store) (int, error) {
	added := 0
	for _, p := range preset.Builtins() {
		if _, err := d.GetPresetByName(p.Name); err == nil {
			logrus.WithField("preset", p.Name).Debug("built-in preset already stored")
			continue
		}
		if _, err := d.CreatePreset(db.CreatePresetInput{Preset: *p, Tags: []string{"builtin"}}); err != nil {
			return added, fmt.Errorf("failed to store built-in preset %q: %w", p.Name, err)
		}
		added++
	}
	return added, nil
}
