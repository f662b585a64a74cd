// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ticketline-dev/ticketline/internal/config"
	"github.com/ticketline-dev/ticketline/internal/query"
	"github.com/ticketline-dev/ticketline/internal/server"
	"github.com/ticketline-dev/ticketline/internal/store"
	"github.com/ticketline-dev/ticketline/internal/store/memory"
	tlerr "github.com/ticketline-dev/ticketline/pkg/errors"

	// Register storage backends.
	_ "github.com/ticketline-dev/ticketline/internal/store/sqlite"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the message query API",
		Long:  "Load configuration, open the store backend, and start the HTTP server.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))

	cmd.Flags().String("backend", "", "override storage backend (sqlite, memory)")
	_ = viper.BindPFlag("storage.backend", cmd.Flags().Lookup("backend"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}

	if viper.GetBool("verbose") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			slog.Error("closing stores", "error", err)
		}
	}()

	engine := query.New(stores.Contacts, stores.Tickets, stores.Messages, query.Config{
		PageSize:        cfg.Query.PageSize,
		SearchLimit:     cfg.Query.SearchLimit,
		PerContactLimit: cfg.Query.PerContactLimit,
		Concurrency:     cfg.Query.Concurrency,
	})

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Server.Listen,
		CORSOrigins: cfg.Server.CORSOrigins,
		APIToken:    cfg.Server.APIToken,
	})
	if err != nil {
		return tlerr.Wrap(err, tlerr.CodeServerStartFailure, "creating server")
	}
	srv.RegisterQueryService(engine)

	slog.Info("serving message query API",
		"listen", cfg.Server.Listen,
		"backend", cfg.Storage.Backend,
	)

	if err := srv.Start(ctx); err != nil {
		return tlerr.Wrap(err, tlerr.CodeServerStartFailure, "running server")
	}
	return nil
}

// openStores opens the configured backend. A seeded memory backend is
// constructed directly so the fixture can be loaded before serving.
func openStores(ctx context.Context, cfg *config.Config) (*store.Stores, error) {
	if cfg.Storage.Backend == "memory" && cfg.Storage.Seed != "" {
		mem := memory.New()
		if err := mem.LoadSeed(ctx, cfg.Storage.Seed); err != nil {
			return nil, err
		}
		return store.NewStores(mem.Contacts(), mem.Tickets(), mem.Messages()), nil
	}

	return store.Open(cfg.Storage.Backend, cfg.Storage.DataDir)
}
