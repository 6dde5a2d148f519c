package cmd

import (
	"fmt"
	"os"

	"github.com/Ruscigno/StockPulse/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is stamped at build time with -ldflags "-X ...cmd.Version=".
var Version = "dev"

var envFile string

// RootCmd represents the base command; without a subcommand it serves.
var RootCmd = &cobra.Command{
	Use:           "stockpulse",
	Short:         "Stock ticker dashboard",
	Long:          `Serves a dashboard that charts a ticker's daily closing prices and summarizes its price history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: runServe,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default .env, or $ENV_FILE)")
	RootCmd.PersistentFlags().String("log-level", "", "debug, info, warn, error, prod or elk")
	RootCmd.PersistentFlags().String("port", "", "HTTP listen port")
	_ = viper.BindPFlag(config.KeyLogLevel, RootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyPort, RootCmd.PersistentFlags().Lookup("port"))
}

// initConfig reads the env file, then defaults and environment into viper.
func initConfig() error {
	if err := config.LoadDotenv(envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	config.SetDefaults(viper.GetViper())
	return nil
}
