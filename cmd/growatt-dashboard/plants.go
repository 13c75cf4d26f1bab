package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var plantsCmd = &cobra.Command{
	Use:   "plants",
	Short: "List the account's plants and their devices",
	Long: `Logs in and lists every plant the configured account owns, with the
devices registered to each. Useful for finding the plant_id to put in
the config file.`,
	RunE: runPlants,
}

func init() {
	rootCmd.AddCommand(plantsCmd)
}

func runPlants(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	if err := client.Login(ctx); err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	plants, err := client.Plants(ctx)
	if err != nil {
		return fmt.Errorf("listing plants: %w", err)
	}
	if len(plants) == 0 {
		fmt.Println("No plants found for this account")
		return nil
	}

	for _, plant := range plants {
		fmt.Printf("Plant %s: %s\n", plant.ID, plant.Name)

		devices, err := client.PlantDevices(ctx, plant.ID)
		if err != nil {
			fmt.Printf("  (could not list devices: %v)\n", err)
			continue
		}
		if len(devices) == 0 {
			fmt.Println("  no devices")
			continue
		}
		for _, device := range devices {
			fmt.Printf("  %s  %s  (%s)\n", device.SN, device.Alias, device.TypeName)
		}
	}

	return nil
}
