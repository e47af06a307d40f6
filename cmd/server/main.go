package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tutordesk/internal/bootstrap"
	httptransport "tutordesk/internal/transport/http"
)

const shutdownGrace = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run serves until SIGINT/SIGTERM, then drains in-flight requests before
// releasing the data platform.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tutordesk, err := bootstrap.New(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	log := tutordesk.Log
	defer log.Sync()
	defer func() {
		if err := tutordesk.Close(); err != nil {
			log.Error("close resources failed", "error", err)
		}
	}()
	if tutordesk.ConfigErr != nil {
		log.Warn("serving configuration banner only", "error", tutordesk.ConfigErr)
	}

	srv := &http.Server{
		Addr:              tutordesk.Config.HTTPAddr(),
		Handler:           httptransport.NewRouter(tutordesk),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "addr", srv.Addr, "env", tutordesk.Config.App.Env)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("server stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
