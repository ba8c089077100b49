package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estatepulse/crm-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "estatepulse",
	Short: "Multi-tenant real estate agency CRM",
	Long:  "Manages contacts, listings, offers, and tasks per agency, with CSV/XLSX import, heuristic field normalization, and optional AI assistance.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
