// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-searcher/internal/api"
	"github.com/pdiddy/paper-searcher/internal/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP search API",
	Long: `Serve starts the JSON API:

  GET /search?q=&s=&y=&offset=&limit=   keyword search
  GET /abstract/{id}                    title and abstract of one paper
  GET /venues?rank=&domain=&type=       CCF venue listing
  GET /venues/{abbr}                    one venue
  GET /healthz                          liveness

Responses are {code, msg, ...} envelopes; code=1 signals failure. The
server stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("env", cfg.EnvName())
	handler := api.NewHandler(search.New(st, st, cfg.Policy), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.Serve(ctx, cfg.Server, handler, logger)
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (default from server.host)")
	serveCmd.Flags().Int("port", 0, "listen port (default from server.port)")

	rootCmd.AddCommand(serveCmd)
}
