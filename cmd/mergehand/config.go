package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calebsw/mergehand/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show configuration",
	Long: `Display the effective mergehand configuration.

Without arguments, displays all configuration values.
With one argument (key), displays the value for that key.

Configuration is stored at ~/.config/mergehand/config.yaml
Project-specific overrides can be placed in .mergehand.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 0 {
			displayAllConfig(cfg)
			return
		}
		displayConfigKey(cfg, args[0])
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	// Mask API key if set
	apiKeyDisplay := "(not set)"
	if cfg.Anthropic.APIKey != "" {
		apiKeyDisplay = "****"
	}

	fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("anthropic.aws_region: %s\n", cfg.Anthropic.AWSRegion)
	fmt.Printf("anthropic.aws_profile: %s\n", cfg.Anthropic.AWSProfile)
	fmt.Printf("resolver.max_iterations: %d\n", cfg.Resolver.MaxIterations)
	fmt.Printf("resolver.commit: %t\n", cfg.Resolver.Commit)
	fmt.Printf("resolver.commit_message: %s\n", cfg.Resolver.CommitMessage)
	fmt.Printf("history.enabled: %t\n", cfg.History.Enabled)
	fmt.Printf("report.enabled: %t\n", cfg.Report.Enabled)
	fmt.Printf("report.dir: %s\n", cfg.Report.Dir)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	switch key {
	case "anthropic.api_key":
		if cfg.Anthropic.APIKey != "" {
			fmt.Println("****")
		} else {
			fmt.Println("(not set)")
		}
	case "anthropic.model":
		fmt.Println(cfg.Anthropic.Model)
	case "anthropic.use_bedrock":
		fmt.Println(cfg.Anthropic.UseBedrock)
	case "anthropic.aws_region":
		fmt.Println(cfg.Anthropic.AWSRegion)
	case "anthropic.aws_profile":
		fmt.Println(cfg.Anthropic.AWSProfile)
	case "resolver.max_iterations":
		fmt.Println(cfg.Resolver.MaxIterations)
	case "resolver.commit":
		fmt.Println(cfg.Resolver.Commit)
	case "resolver.commit_message":
		fmt.Println(cfg.Resolver.CommitMessage)
	case "history.enabled":
		fmt.Println(cfg.History.Enabled)
	case "report.enabled":
		fmt.Println(cfg.Report.Enabled)
	case "report.dir":
		fmt.Println(cfg.Report.Dir)
	default:
		fmt.Fprintf(os.Stderr, "Unknown configuration key: %s\n", key)
		os.Exit(1)
	}
}
