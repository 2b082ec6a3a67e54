package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zate/ifsgen/internal/db"
)

var (
	dbPath   string
	format   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "ifsgen",
	Short: "IFS fractal parameter checks and preset management",
	Long: `ifsgen validates iterated function system parameters, estimates point
growth, and manages presets for the IFS_Generator node group.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	home, _ := os.UserHomeDir()
	defaultDB := filepath.Join(home, ".ifsgen", "store.db")
	if envDB := os.Getenv("IFSGEN_DB"); envDB != "" {
		defaultDB = envDB
	}
	defaultLevel := "warn"
	if envLevel := os.Getenv("IFSGEN_LOG_LEVEL"); envLevel != "" {
		defaultLevel = envLevel
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Database file path")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format: text, json, markdown")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLevel, "Log level: debug, info, warn, error")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupLogging sends logs to stderr so stdout carries only command output.
func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

func openDB() (*db.SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	d, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logrus.WithField("path", dbPath).Debug("opened database")
	return d, nil
}

// resolveArg resolves a preset ID prefix or name to a full ID.
func resolveArg(d db.Store, prefix string) (string, error) {
	resolved, err := d.ResolveID(prefix)
	if err != nil {
		return "", fmt.Errorf("cannot resolve preset %q: %w", prefix, err)
	}
	return resolved, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
