package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pennywise-app/pennywise/internal/config"
	"github.com/pennywise-app/pennywise/internal/server"
	"github.com/pennywise-app/pennywise/internal/store"
	"github.com/pennywise-app/pennywise/internal/tagging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("pennywised: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RulesPath != "" {
		n, err := tagging.LoadRuleFile(ctx, s, cfg.RulesPath)
		if err != nil {
			return err
		}
		log.Printf("loaded %d rules from %s", n, cfg.RulesPath)
	}

	srv, err := server.New(s)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (db: %s)", cfg.Addr, cfg.DBPath)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
