// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-searcher CLI: a local
// index of DBLP paper listings and CCF venue rankings with a boolean
// keyword search over titles and abstracts.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the paper-searcher CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-searcher",
	Short: "Search a local index of conference and journal papers",
	Long: `paper-searcher keeps a SQLite index of paper listings (title, venue,
year, abstract) and CCF venue metadata. Papers and venues are loaded from
YAML or JSON files with "import"; "search" and the HTTP API started by
"serve" run keyword queries where + means AND and | means OR, evaluated
left to right over titles and abstracts.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-searcher.yaml or ~/.config/paper-searcher/paper-searcher.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (overrides env and database.* settings)")
	rootCmd.PersistentFlags().String("env", "", "environment: test or prod (selects database.test_path or database.path)")

	viper.BindPFlag("env", rootCmd.PersistentFlags().Lookup("env"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-searcher")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-searcher"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("PAPER_SEARCHER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
