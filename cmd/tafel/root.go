package main

import (
	"fmt"
	"os"

	"github.com/aretw0/tafel/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tafel",
	Short: "Tafel is a restaurant FAQ and table reservation assistant",
	Long: `Tafel answers guest questions from a keyword-matched knowledge base and takes
table reservations through a short chat dialogue, forwarding them to the restaurant by e-mail.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (default: ./tafel.yaml if present)")
	rootCmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "Path to a .env file with secrets (empty to disable)")
	rootCmd.PersistentFlags().String("kb", "", "Path to a knowledge base file (overrides knowledge.path)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides log.level)")
}

// loadConfig resolves the configuration and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(path, config.WithEnvFile(envFile))
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("kb") {
		cfg.Knowledge.Path, _ = cmd.Flags().GetString("kb")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Lookup("addr") != nil && cmd.Flags().Changed("addr") {
		cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
