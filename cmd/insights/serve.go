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

	"github.com/spf13/cobra"

	"github.com/OldStager01/student-insights/api"
	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/internal/metrics"
)

func newServeCmd(c *cli) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the insights HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				c.cfg.API.Port = port
			}
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "API port (overrides config)")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	logger.Infof("Starting %s in %s mode", c.cfg.App.Name, c.cfg.App.Mode)

	rt, err := c.bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	var m *metrics.Metrics
	if c.cfg.Metrics.Enabled {
		m = metrics.Get()
		if c.cfg.Metrics.Port != c.cfg.API.Port {
			metrics.StartServer(c.cfg.Metrics.Port)
		}
	}

	server := api.NewServer(c.cfg.API, c.cfg.App.Mode, rt.svc, rt.db, m)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdownChan)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", c.cfg.API.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	timeout := c.cfg.App.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
