package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"loanbook/internal/cli"
	applog "loanbook/internal/log"
)

var (
	cfgFile string
	version = "dev"
	logger  *applog.Logger
	rootCmd = &cobra.Command{
		Use:   "loanbook-cli",
		Short: "Inspect a loan book and render its report offline",
		Long: `loanbook-cli loads the same loan sources as the loanbook server and runs
the metrics engine and report composer against them from the terminal.

It can also seed the SQLite store from a JSON loans file.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./loanbook.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("source", "json", "loan source (json, sqlite, sheets)")
	rootCmd.PersistentFlags().String("loans-file", "loans_data.json", "JSON loans file")
	rootCmd.PersistentFlags().String("db", "./data/loanbook.db", "SQLite database path")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("source.type", rootCmd.PersistentFlags().Lookup("source"))
	_ = viper.BindPFlag("source.file", rootCmd.PersistentFlags().Lookup("loans-file"))
	_ = viper.BindPFlag("sqlite.path", rootCmd.PersistentFlags().Lookup("db"))

	viper.SetDefault("source.key", "loans")
	viper.SetDefault("sheets.sheet_name", "Loans")

	rootCmd.AddCommand(metricsCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("loanbook")
		viper.SetConfigType("yaml")
	}

	// LOANBOOK_SOURCE_TYPE, LOANBOOK_SQLITE_PATH, ...
	viper.SetEnvPrefix("LOANBOOK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	format := viper.GetString("logging.format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log format: %s", format)
	}
	logger = cli.SetupLogger(viper.GetString("logging.level"), format).WithComponent(applog.ComponentCLI)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "loanbook-cli", version)
		},
	}
}
