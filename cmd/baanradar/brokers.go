package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var brokersCmd = &cobra.Command{
	Use:   "brokers",
	Short: "List all configured brokers",
	Long:  "Reads the config and prints a table of all configured brokers.",
	RunE:  runBrokers,
}

func init() {
	rootCmd.AddCommand(brokersCmd)
}

func runBrokers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-15s %s\n", "Broker", "Status")
	fmt.Println(strings.Repeat("─", 24))

	enabled, disabled := 0, 0
	for _, b := range cfg.Brokers {
		status := "enabled"
		if !b.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}
		fmt.Printf("%-15s %s\n", b.Name, status)
	}

	fmt.Printf("\nTotal: %d brokers (%d enabled, %d disabled)\n", len(cfg.Brokers), enabled, disabled)
	return nil
}
