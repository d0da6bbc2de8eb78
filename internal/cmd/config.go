package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/versioner/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify versioner configuration",
	Long: `View or modify versioner configuration.

Without arguments, displays the effective configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  versioner config set release.push true
  versioner config set release.remote upstream
  versioner config set release.preset conventionalcommits

Valid keys:
  release.remote                 - Remote pushed to
  release.base_branch            - Branch pushed with its tags
  release.push                   - Push after versioning (true/false)
  release.no_verify              - Skip git hooks (true/false)
  release.sync_versions          - Version all projects together (true/false)
  release.changelog_header       - Changelog header
  release.commit_message_format  - Release commit message template
  release.preset                 - Options: angular, conventionalcommits
  workspace.file                 - Workspace file name
  logging.level                  - Options: debug, info, warn, error
  logging.dir                    - Directory for versioner.log`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/versioner/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// configKeys maps settable keys to their value kind.
var configKeys = map[string]string{
	"release.remote":                "string",
	"release.base_branch":           "string",
	"release.push":                  "bool",
	"release.no_verify":             "bool",
	"release.sync_versions":         "bool",
	"release.changelog_header":      "string",
	"release.commit_message_format": "string",
	"release.preset":                "string",
	"workspace.file":                "string",
	"logging.level":                 "string",
	"logging.dir":                   "string",
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "%s %s\n\n", mutedStyle.Render("# Config file:"), viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "%s\n\n", mutedStyle.Render("# Config file: (none - using defaults)"))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	kind, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'versioner config set --help' to see valid keys", key)
	}

	var typed any = value
	if kind == "bool" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typed = b
	}

	viper.Set(key, typed)
	if _, err := config.Load(); err != nil {
		return err
	}

	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typed)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'versioner config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configContent := `# Versioner Configuration

release:
  # Remote and branch used when pushing a release
  remote: origin
  base_branch: main
  # Push the release commit and tag after versioning
  push: false
  # Skip git hooks on commit and push
  no_verify: false
  # Release every workspace project with one shared version and tag
  sync_versions: false
  changelog_header: "# Changelog"
  # Supports ${projectName}, ${version} and ${tag}
  commit_message_format: "chore(${projectName}): release version ${version}"
  # Options: angular, conventionalcommits
  preset: angular

workspace:
  # Workspace description, relative to the workspace root
  file: versioner.yaml

logging:
  # Options: debug, info, warn, error
  level: info
  # Directory for versioner.log (empty logs to stderr)
  dir: ""
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. ./%s (current directory)\n", LocalConfigFile)
	fmt.Fprintf(out, "  2. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintln(out, "  3. $HOME/.config/versioner/config.yaml")
	fmt.Fprintln(out, "\nEnvironment variables: VERSIONER_* (e.g., VERSIONER_RELEASE_PUSH)")
	return nil
}
