package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	logAddrKey     = "addr"
	requestTimeout = 5 * time.Second
)

// configureAndStartServer builds the route table, binds addr, and serves until ctx is
// canceled or the process receives an interrupt or termination signal.
func (app *application) configureAndStartServer(ctx context.Context, addr string) error {
	mux, err := app.routes()
	if err != nil {
		return fmt.Errorf("build routes: %w", err)
	}

	shutdownComplete := make(chan struct{})
	srv := &http.Server{
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           mux,
		IdleTimeout:       time.Minute,
		ReadTimeout:       requestTimeout,
		WriteTimeout:      requestTimeout,
		ReadHeaderTimeout: time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sigint:
		case <-ctx.Done():
		}
		app.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			app.logger.LogAttrs(ctx, slog.LevelError, "error shutting down server",
				slog.Any("error", shutdownErr))
		}
		close(shutdownComplete)
	}()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("tcp listen: %w", err)
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server", slog.String(logAddrKey, listener.Addr().String()))

	if err = srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server serve: %w", err)
	}
	<-shutdownComplete

	return nil
}
