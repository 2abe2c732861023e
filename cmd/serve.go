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

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/zipx/internal/server"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the extraction service over archives below server.root until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := int(cmd.Int("port")); port > 0 {
		cfg.Port = port
	}
	if root := cmd.String("root"); root != "" {
		cfg.Root = root
	}
	if delay := int(cmd.Int("line-delay")); delay >= 0 {
		cfg.LineDelayMS = delay
	}

	if info, err := os.Stat(cfg.Root); err != nil || !info.IsDir() {
		return fmt.Errorf("server root %q is not a directory", cfg.Root)
	}

	handler := server.NewExtractHandler(server.ZipCatalog{Root: cfg.Root}, cfg.Root, cfg.LineDelay(), r.logger)
	srv := server.NewHTTPServer(cfg.Addr(), server.NewRouter(handler, r.config.Service.Token))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		r.logger.Info("extraction service listening", "addr", cfg.Addr(), "root", cfg.Root, "auth", r.config.Service.Token != "")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down", "running", handler.Registry.Len())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	handler.Registry.CancelAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
