// Package cmd wires the adaptive core's controllers, store, and
// configuration into a small cobra-based CLI — the "external UI"
// stand-in used to drive and display the core's decisions end to end for
// manual verification and demos. It does not replace a real product's TUI
// or web UI.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/adaptprep/internal/applog"
	"github.com/abhisek/adaptprep/internal/config"
	"github.com/abhisek/adaptprep/internal/store"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "adaptprep",
	Short: "Adaptive test-prep core demo CLI",
	Long:  "adaptprep drives the IRT/BKT adaptive core through a diagnostic, a practice session, and a spaced-repetition review, for manual verification and demos.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ADAPTPREP_DB env var)")
	rootCmd.PersistentFlags().String("learner", "demo", "Learner id to act as")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log at debug level")
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML file overriding the default thresholds")

	rootCmd.AddCommand(diagnosticCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then ADAPTPREP_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, os.MkdirAll(filepath.Dir(p), 0o755)
	}
	return store.DefaultDBPath()
}

// resolveConfig loads the recognized-options record from --config,
// falling back to config.Defaults() when the flag is unset.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func resolveLogger(cmd *cobra.Command) *applog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return applog.New(log.DebugLevel)
	}
	return applog.New(log.InfoLevel)
}

func openStore(cmd *cobra.Command) (*store.SQLiteStore, string, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, "", fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	return s, dbPath, nil
}
