// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// playsimd runs the playback session controller behind an HTTP control
// surface, driving each session against a simulated media pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/playctl/internal/api"
	"github.com/ManuGH/playctl/internal/config"
	"github.com/ManuGH/playctl/internal/log"
	"github.com/ManuGH/playctl/internal/registry"
	"github.com/ManuGH/playctl/internal/session"
	"github.com/ManuGH/playctl/internal/sim"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe defaults until the config is loaded.
	log.Configure(log.Config{
		Level:   "info",
		Service: "playsimd",
		Version: version,
	})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	effectiveConfigPath := strings.TrimSpace(*configPath)
	loader := config.NewLoader(effectiveConfigPath)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(log.FieldEvent, "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	if err := log.SetLevel(cfg.Log.Level); err != nil {
		logger.Warn().Err(err).Msg("could not apply configured log level")
	}
	logger.Info().
		Str(log.FieldEvent, "config.loaded").
		Str("listen", cfg.Server.Listen).
		Msg("configuration loaded")

	holder := config.NewHolder(cfg, loader, effectiveConfigPath)
	reg := registry.New()

	factory := func(_ *http.Request) (*session.Controller, error) {
		p := sim.New(holder.Get().SessionConfig(), sim.DefaultProfile())
		if err := p.Start(ctx); err != nil {
			_ = p.Controller.Close()
			return nil, err
		}
		return p.Controller, nil
	}

	server := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           api.NewServer(reg, factory).Router(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return holder.Watch(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := reg.ShutdownAll(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("session shutdown reported errors")
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("daemon exited with error")
		os.Exit(1)
	}
	logger.Info().Msg("daemon stopped")
}
