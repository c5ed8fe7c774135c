// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

// Package main is the entry point for the pfcards CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bfield1/pfcards/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is replaced with a configured logger before any subcommand runs.
// Diagnostics go to stderr; stdout is reserved for record output.
var logger = zap.NewNop()

// rootCmd is the base command for the pfcards CLI.
var rootCmd = &cobra.Command{
	Use:   "pfcards",
	Short: "Scrape Pathfinder cards from the Archives of Nethys",
	Long: `pfcards scrapes item and spell pages from the Archives of Nethys into
JSON card records. Text fields are LaTeX-escaped so the records can be fed
straight into card-sheet typesetting.

Each operation is a subcommand: item and spell scrape a single page;
library indexes scraped records into a searchable SQLite database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = viper.GetString("log_level")
		}
		log, err := logging.New(level)
		if err != nil {
			return err
		}
		logger = log
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pfcards.yaml or ~/.config/pfcards/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "diagnostic verbosity: debug, info, warn, or error (default warn)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pfcards")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pfcards"))
		}
	}

	viper.SetEnvPrefix("PFCARDS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
