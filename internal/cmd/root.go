package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/versioner/internal/config"
)

// LocalConfigFile is a per-repository config file picked up from the
// working directory.
const LocalConfigFile = ".versioner.yaml"

var rootCmd = &cobra.Command{
	Use:   "versioner",
	Short: "Release orchestration for monorepos",
	Long: `Versioner computes the next semantic version of a project from its
conventional commit history, writes manifests and changelogs, commits and
tags the release, optionally pushes it, and then runs follow-up targets.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/versioner/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "workspace root (default is the current directory)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	switch cfgFile := viper.GetString("config"); {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case fileExists(LocalConfigFile):
		viper.SetConfigFile(LocalConfigFile)
	default:
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/versioner")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("VERSIONER")
	// e.g., VERSIONER_RELEASE_BASE_BRANCH for release.base_branch
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// workspaceRoot returns the --root flag or the current directory.
func workspaceRoot(cmd *cobra.Command) (string, error) {
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		return root, nil
	}
	return os.Getwd()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
