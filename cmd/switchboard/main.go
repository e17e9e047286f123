// Package main is the switchboard command line interface.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/leofalp/switchboard"
)

var cfgFile string

func main() {
	// A local .env supplies provider keys during development; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "switchboard",
		Short: "One client for every LLM provider",
		Long: `Send chat completions to OpenAI-compatible, Anthropic, and Google endpoints
through one normalized client, with model listings, pricing, and usage tracking.

Provider API keys are read from the configuration or from <PROVIDER>_API_KEY
environment variables (a .env file in the working directory is honored).`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml, ~/.config/switchboard)")

	rootCmd.AddCommand(
		chatCmd(),
		modelsCmd(),
		providersCmd(),
		pricingCmd(),
		usageCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newSwitchboard() (*switchboard.Switchboard, error) {
	return switchboard.New(switchboard.WithConfigFile(cfgFile))
}
