package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwillemsen/baanradar/internal/store"
)

var vacanciesCmd = &cobra.Command{
	Use:   "vacancies",
	Short: "List all stored vacancies",
	Long:  "Reads the vacancy database and prints a table of all stored vacancies.",
	RunE:  runVacancies,
}

func init() {
	rootCmd.AddCommand(vacanciesCmd)
}

func runVacancies(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("%-30s %-25s %-15s %-12s %s\n", "Title", "Company", "Location", "Broker", "Posted")
	fmt.Println(strings.Repeat("─", 100))

	for _, v := range vacancies {
		location := "?"
		if v.Location != nil {
			location = v.Location.Name
		}
		posted := "n/a"
		if v.PostedAt != nil {
			posted = v.PostedAt.Format("2006-01-02")
		}
		fmt.Printf("%-30s %-25s %-15s %-12s %s\n",
			truncate(v.Title, 30), truncate(v.Company, 25), truncate(location, 15), v.Broker, posted)
	}

	fmt.Printf("\nTotal: %d vacancies\n", len(vacancies))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
