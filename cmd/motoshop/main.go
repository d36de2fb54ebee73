package main

import (
	"fmt"
	"os"

	"github.com/siyaamtanzeel/Motoshop/configs"
	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	configDir string
	envName   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "motoshop",
		Short:   "Motoshop storefront API",
		Version: Version,
	}

	defaultEnv := os.Getenv("APP_ENV") // dev | staging | prod
	if defaultEnv == "" {
		defaultEnv = "dev"
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "configs", "directory holding base.yaml and <env>.yaml")
	rootCmd.PersistentFlags().StringVar(&envName, "env", defaultEnv, "config overlay to load (dev, staging, prod)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (configs.Config, error) {
	cfg, err := configs.Load(configDir, envName)
	if err != nil {
		return configs.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
