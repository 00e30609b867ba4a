// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-searcher/internal/store"
	"github.com/pdiddy/paper-searcher/pkg/types"
)

func setDefaults() {
	policy := types.DefaultSearchPolicy()

	viper.SetDefault("env", types.EnvTest)
	viper.SetDefault("database.path", "data/papers.db")
	viper.SetDefault("database.test_path", "data/papers_test.db")
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("policy.allowed_venues", policy.AllowedVenues)
	viper.SetDefault("policy.min_year", policy.MinYear)
	viper.SetDefault("policy.max_year", policy.MaxYear)
	viper.SetDefault("policy.max_keyword_length", policy.MaxKeywordLength)
	viper.SetDefault("policy.max_limit", policy.MaxLimit)
}

// loadConfig decodes the merged viper settings into a Config.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := checkPolicy(cfg.Policy); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func checkPolicy(p types.SearchPolicy) error {
	switch {
	case len(p.AllowedVenues) == 0:
		return fmt.Errorf("policy.allowed_venues is empty")
	case p.MinYear > p.MaxYear:
		return fmt.Errorf("policy.min_year %d is after policy.max_year %d", p.MinYear, p.MaxYear)
	case p.MaxKeywordLength <= 0:
		return fmt.Errorf("policy.max_keyword_length must be positive")
	case p.MaxLimit <= 0:
		return fmt.Errorf("policy.max_limit must be positive")
	}
	return nil
}

// dbPath returns the --db flag when given, else the database for the
// configured environment.
func dbPath(cmd *cobra.Command, cfg types.Config) string {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p
	}
	return cfg.DBPath()
}

// openStore loads configuration and opens the configured database.
func openStore(cmd *cobra.Command) (*store.Store, types.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	path := dbPath(cmd, cfg)
	s, err := store.NewStore(path)
	if err != nil {
		return nil, cfg, fmt.Errorf("opening %s database %s: %w", cfg.EnvName(), path, err)
	}
	fmt.Fprintf(os.Stderr, "Using %s database: %s\n", cfg.EnvName(), path)
	return s, cfg, nil
}
