package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neelabalan/growatt-dashboard/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what the local database holds",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	power, err := store.PowerStats(ctx)
	if err != nil {
		return fmt.Errorf("reading power stats: %w", err)
	}
	energy, err := store.EnergyStats(ctx)
	if err != nil {
		return fmt.Errorf("reading energy stats: %w", err)
	}

	fmt.Printf("Database: %s\n\n", getDBPath(cfg))
	printTableStats("Power (pac)", power)
	printTableStats("Energy (kwh)", energy)
	return nil
}

func printTableStats(name string, stats *storage.TableStats) {
	fmt.Printf("%s: %s samples\n", name, humanize.Comma(stats.Rows))
	if stats.Rows == 0 {
		return
	}
	fmt.Printf("  oldest: %s (%s)\n", stats.Oldest.Format("2006-01-02 15:04"), humanize.Time(stats.Oldest))
	fmt.Printf("  newest: %s (%s)\n", stats.Newest.Format("2006-01-02 15:04"), humanize.Time(stats.Newest))
}
