package main

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/flashquest-backend/internal/app"
	"github.com/heartmarshall/flashquest-backend/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "srsctl",
	Short:         "Flashquest review backend tooling",
	Version:       app.BuildVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (overrides CONFIG_PATH)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(studyCmd)
}

// loadConfig honours --config before falling back to CONFIG_PATH.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return config.LoadFrom(p)
	}
	return config.Load()
}
