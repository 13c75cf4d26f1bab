package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neelabalan/growatt-dashboard/internal/collector"
	"github.com/neelabalan/growatt-dashboard/internal/publisher"
	"github.com/neelabalan/growatt-dashboard/internal/storage"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run the collector daemon",
	Long: `Logs in to the Growatt API and collects plant telemetry on the
configured interval until the process is stopped. On the very first run
(no database file yet) the full history since start_date is backfilled
before the polling loop starts.`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Collector started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	// authentication failure is fatal, the container exits non-zero
	if err := client.Login(ctx); err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	// decide before opening the store: opening creates the file
	_, statErr := os.Stat(getDBPath(cfg))
	firstRun := os.IsNotExist(statErr)

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	sinks := []storage.Sink{store}
	if cfg.Influx.Enabled {
		sinks = append(sinks, storage.NewInfluxSink(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket))
		fmt.Println("✓ InfluxDB sink enabled")
	}
	sink := storage.NewMultiSink(sinks...)
	defer sink.Close()

	startDate, err := cfg.GetStartDate()
	if err != nil {
		return err
	}
	interval, err := cfg.GetPollInterval()
	if err != nil {
		return err
	}

	col := collector.New(client, sink, cfg.PlantID, startDate, interval, logger)

	if cfg.MQTT.Enabled {
		pub, err := publisher.New(cfg.MQTT, cfg.PlantID, logger)
		if err != nil {
			// publishing is best-effort, keep collecting without it
			logger.Warn("MQTT publisher disabled", zap.Error(err))
		} else {
			defer pub.Close()
			col.SetPublisher(pub)
			fmt.Println("✓ MQTT publisher enabled")
		}
	}

	if firstRun {
		fmt.Printf("No database found, backfilling from %s...\n", cfg.StartDate)
		if err := col.Backfill(ctx); err != nil {
			return fmt.Errorf("backfilling: %w", err)
		}
		fmt.Println("✓ Backfill complete")
	}

	// first cycle right away, the scheduler fires after one interval
	if err := col.CollectOnce(ctx); err != nil {
		logger.Error("initial collect cycle failed", zap.Error(err))
	}

	fmt.Printf("Polling every %s, press Ctrl+C to stop\n", interval)
	return col.Run(ctx)
}
