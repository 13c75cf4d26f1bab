package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the config file and credentials",
	Long:  `Validates the configuration and performs a login against the Growatt API without collecting anything.`,
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Println("✓ Config valid")

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	if err := client.Login(context.Background()); err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	fmt.Printf("✓ Logged in as %s\n", cfg.Username)
	return nil
}
