package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete versioner configuration
type Config struct {
	Release   ReleaseConfig   `mapstructure:"release" yaml:"release"`
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// ReleaseConfig holds defaults for the version command. Flags override these
// only when they are set explicitly on the command line.
type ReleaseConfig struct {
	// Remote is the git remote pushed to when push is enabled (default: "origin")
	Remote string `mapstructure:"remote" yaml:"remote"`
	// BaseBranch is the branch pushed together with its tags (default: "main")
	BaseBranch string `mapstructure:"base_branch" yaml:"base_branch"`
	// Push pushes the release commit and tag after versioning (default: false)
	Push bool `mapstructure:"push" yaml:"push"`
	// NoVerify skips git hooks on commit and push (default: false)
	NoVerify bool `mapstructure:"no_verify" yaml:"no_verify"`
	// SyncVersions versions every workspace project in lock-step (default: false)
	SyncVersions bool `mapstructure:"sync_versions" yaml:"sync_versions"`
	// ChangelogHeader is written at the top of every changelog (default: "# Changelog")
	ChangelogHeader string `mapstructure:"changelog_header" yaml:"changelog_header"`
	// CommitMessageFormat is the release commit message template.
	// Supports ${projectName}, ${version} and ${tag}.
	CommitMessageFormat string `mapstructure:"commit_message_format" yaml:"commit_message_format"`
	// Preset is the commit naming convention used for bump inference.
	// Options: "angular", "conventionalcommits" (default: "angular")
	Preset string `mapstructure:"preset" yaml:"preset"`
}

// WorkspaceConfig locates the workspace description file
type WorkspaceConfig struct {
	// File is the workspace file name, resolved relative to the workspace root
	// (default: "versioner.yaml")
	File string `mapstructure:"file" yaml:"file"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory for versioner.log; empty logs to stderr
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Release: ReleaseConfig{
			Remote:              "origin",
			BaseBranch:          "main",
			Push:                false,
			NoVerify:            false,
			SyncVersions:        false,
			ChangelogHeader:     "# Changelog",
			CommitMessageFormat: "chore(${projectName}): release version ${version}",
			Preset:              "angular",
		},
		Workspace: WorkspaceConfig{
			File: "versioner.yaml",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Release defaults
	viper.SetDefault("release.remote", defaults.Release.Remote)
	viper.SetDefault("release.base_branch", defaults.Release.BaseBranch)
	viper.SetDefault("release.push", defaults.Release.Push)
	viper.SetDefault("release.no_verify", defaults.Release.NoVerify)
	viper.SetDefault("release.sync_versions", defaults.Release.SyncVersions)
	viper.SetDefault("release.changelog_header", defaults.Release.ChangelogHeader)
	viper.SetDefault("release.commit_message_format", defaults.Release.CommitMessageFormat)
	viper.SetDefault("release.preset", defaults.Release.Preset)

	// Workspace defaults
	viper.SetDefault("workspace.file", defaults.Workspace.File)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "versioner")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".versioner"
	}
	return filepath.Join(home, ".config", "versioner")
}

// ConfigFile returns the path to the user config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
