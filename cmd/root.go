package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leonali030/policyengine-app/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "policyengine",
	Short: "Compare a reform tax/benefit policy against a baseline",
	Long:  "Resolves policies and metadata from the policy API, renders reform diffs against baseline timelines, and manages URL-encoded comparison state.",
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
