package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vvl-tools/vvlci/internal/config"
)

var configYAML bool

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show effective configuration",
	Long: `Display the effective configuration after merging defaults, the user
config (~/.config/vvlci/config.yaml), the project config (.vvlci.yaml),
and VVLCI_* environment variables.

With a key argument, prints just that value.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if len(args) == 1 {
			return displayConfigKey(cfg, args[0])
		}
		if configYAML {
			return displayConfigYAML(cfg)
		}
		displayAllConfig(cfg)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configYAML, "yaml", false, "Dump the effective configuration as YAML")
}

// displayAllConfig prints all configuration values as dotted keys.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("build.configuration: %s\n", cfg.Build.Configuration)
	fmt.Printf("build.dir: %s\n", cfg.Build.Dir)
	fmt.Printf("build.repo_root: %s\n", cfg.Build.RepoRoot)
	fmt.Printf("build.jobs: %d\n", cfg.Build.Jobs)
	fmt.Printf("darwin.deployment_target_min: %s\n", cfg.Darwin.DeploymentTargetMin)
	fmt.Printf("history.enabled: %t\n", cfg.History.Enabled)
	fmt.Printf("history.path: %s\n", historyPathDisplay(cfg))
}

// displayConfigKey prints the value for a single dotted key.
func displayConfigKey(cfg *config.Config, key string) error {
	switch key {
	case "build.configuration":
		fmt.Println(cfg.Build.Configuration)
	case "build.dir":
		fmt.Println(cfg.Build.Dir)
	case "build.repo_root":
		fmt.Println(cfg.Build.RepoRoot)
	case "build.jobs":
		fmt.Println(cfg.Build.Jobs)
	case "darwin.deployment_target_min":
		fmt.Println(cfg.Darwin.DeploymentTargetMin)
	case "history.enabled":
		fmt.Println(cfg.History.Enabled)
	case "history.path":
		fmt.Println(historyPathDisplay(cfg))
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}

// displayConfigYAML dumps the effective configuration as YAML.
func displayConfigYAML(cfg *config.Config) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// historyPathDisplay resolves the default history path for display.
func historyPathDisplay(cfg *config.Config) string {
	if cfg.History.Path != "" {
		return cfg.History.Path
	}
	return "(default)"
}
