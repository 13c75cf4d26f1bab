package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neelabalan/growatt-dashboard/internal/config"
	"github.com/neelabalan/growatt-dashboard/internal/growatt"
	"github.com/neelabalan/growatt-dashboard/internal/storage"
)

var (
	cfgFile string
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "growatt-dashboard",
	Short: "Collect Growatt solar telemetry for a dashboard",
	Long: `growatt-dashboard polls the Growatt cloud API for plant telemetry and
stores it as time series for a pre-provisioned dashboard. It backfills
history from a configured start date and then keeps collecting on a
fixed interval.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default from config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads and validates the configuration file
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// getDBPath returns the database file path
func getDBPath(cfg *config.Config) string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.GetDatabasePath()
}

// openStore opens the local SQLite store, creating its directory if needed
func openStore(cfg *config.Config) (*storage.SQLiteStore, error) {
	path := getDBPath(cfg)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return storage.NewSQLiteStore(path)
}

// newLogger builds the process logger
func newLogger() (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zapCfg.Build()
}

// newClient builds a Growatt API client from the config
func newClient(cfg *config.Config, logger *zap.Logger) (*growatt.Client, error) {
	timeout, err := cfg.GetHTTPTimeout()
	if err != nil {
		return nil, err
	}
	return growatt.NewClient(cfg.GetAPIURL(), cfg.Username, cfg.Password, timeout, logger), nil
}
