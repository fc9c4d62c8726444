package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/phrazzld/paramstore/internal/api"
	"github.com/phrazzld/paramstore/internal/service/auth"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, c *cli, args []string) error {
	var (
		configPath string
		port       int
	)
	fs := c.flagSet("serve", &configPath)
	fs.IntVar(&port, "port", 0, "listen port (default from configuration)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	app, err := newApplication(ctx, configPath, c.stderr)
	if err != nil {
		return err
	}
	defer app.close()

	jwtService, err := auth.NewJWTService(app.config.Auth)
	if err != nil {
		return fmt.Errorf("serve needs auth.jwt_secret: %w", err)
	}
	if port == 0 {
		port = app.config.Server.Port
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", port),
		Handler: api.NewRouter(api.RouterDeps{
			Service:    app.service,
			JWTService: jwtService,
			Metrics:    app.metrics,
			Logger:     app.logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serveUntilDone(ctx, app, server)
}

// serveUntilDone runs server until ctx is cancelled, then shuts it down.
func serveUntilDone(ctx context.Context, app *application, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.logger.Info("server shutdown completed")
	return nil
}
