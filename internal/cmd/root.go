// Package cmd wires the cobra CLI: one-off lookups, flag management, and
// the long-running HTTP service.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/userlens/userlens/internal/config"
)

var (
	cfgFile string
	verbose bool

	// Version info set by the main package via ldflags.
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package to set version information.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "userlens",
	Short: "User profile lookup with rotating upstream credentials",
	Long: `userlens fetches user profiles from a rate-limited third-party API,
rotating across a pool of API tokens, retrying transient failures with
backoff, and caching successful responses.

Use the subcommands to perform specific operations.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., $HOME/.userlens, /etc/userlens)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads the config file and environment before any RunE runs.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("userlens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.userlens")
		viper.AddConfigPath("/etc/userlens")
	}

	viper.SetEnvPrefix("USERLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// A missing config file is fine; the environment can carry everything.
	_ = viper.ReadInConfig()
}

// loadConfig validates the effective configuration. Commands that need the
// core fail fast here when the token pool is empty.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// loadConfigFlagsOnly decodes without core validation; flag commands do not
// need the credential pool.
func loadConfigFlagsOnly() (*config.Config, error) {
	return config.Decode(viper.GetViper())
}
