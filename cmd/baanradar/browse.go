package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwillemsen/baanradar/internal/browse"
	"github.com/jwillemsen/baanradar/internal/store"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored vacancies interactively (TUI)",
	Long:  "Opens an interactive list of all stored vacancies with a detail view. With a home location configured, each vacancy shows its distance from home.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	vacancies, err := sqlStore.ListVacancies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list vacancies: %v\n", err)
		os.Exit(1)
	}

	var home *browse.Home
	if cfg.Home != nil {
		home = &browse.Home{Lon: cfg.Home.Lon, Lat: cfg.Home.Lat}
	}

	return browse.Run(vacancies, home)
}
