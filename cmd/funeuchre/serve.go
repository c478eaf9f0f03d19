package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seanwolter/fun-euchre/internal/clock"
	"github.com/seanwolter/fun-euchre/internal/config"
	"github.com/seanwolter/fun-euchre/internal/idgen"
	"github.com/seanwolter/fun-euchre/internal/orchestrator"
	"github.com/seanwolter/fun-euchre/internal/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fun-euchre HTTP and WebSocket server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	zl, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	log := zl.Sugar()

	cfg, err := config.Load()
	if err != nil {
		log.Errorw("failed to load configuration", "error", err)
		return err
	}

	rt := orchestrator.New(cfg, clock.Real{}, idgen.Secure{}, log, nil)
	rt.Start()

	srv := &transport.Server{
		Lobby: rt.LobbyDispatcher,
		Game:  rt.GameDispatcher,
		Realtime: &transport.RealtimeHandler{
			Clock:    rt.Clock,
			Tokens:   rt.Tokens,
			Sessions: rt.Sessions,
			Broker:   rt.Broker,
			Log:      log,
		},
		Log:     log,
		Service: "fun-euchre",
	}

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.HTTPAddr, "persistenceMode", cfg.PersistenceMode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			log.Errorw("http server failed", "error", err)
		}
	case sig := <-sigCh:
		log.Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorw("http server shutdown error", "error", err)
	}

	rt.Stop()
	return nil
}
