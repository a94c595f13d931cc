package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	globalConfigFile string
	globalLogLevel   string
	globalLogFormat  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "adaptersentry",
	Short: "AdapterSentry - Integration Adapter Health Monitor",
	Long: `AdapterSentry keeps an independent watch over the integration adapters
of your platform: HTTP services, databases, filesystems, FTP/SFTP drops,
message queues and SOAP endpoints.

It polls every configured adapter on a fixed interval, scores their health
and exposes status, scores, history and alerts over a REST API.`,
	// Each command handles its own initialization
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// defaultLogFormat picks text output on a terminal, json otherwise
func defaultLogFormat() string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "text"
	}
	return "json"
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&globalConfigFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", defaultLogFormat(), "log format (json, text)")

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in ENV variables if set.
func initConfig() {
	// Read in environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("AS") // AS_LOG_LEVEL, AS_CONFIG_PATH, etc.
}
