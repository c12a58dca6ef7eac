package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chris-regnier/contentcal/internal/api"
	"github.com/chris-regnier/contentcal/internal/refresh"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calendar as a JSON HTTP API",
	Long: `Start an HTTP server exposing the calendar to the dashboard frontend.

Endpoints:
  GET  /health
  GET  /api/items?kinds=&start=&end=&limit=
  POST /api/items/:kind/:id/reschedule
  GET  /api/calendar?view=month|week|day&date=YYYY-MM-DD
  GET  /api/days/:date

The item list is reloaded on the configured refresh schedule. When
serve_token is set, /api requests need it as a bearer token or X-API-Key.`,
	Example: `  contentcal serve
  contentcal serve --listen :9000
  CONTENTCAL_SERVE_TOKEN=secret contentcal serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := appConfig.Listen
		if serveListen != "" {
			addr = serveListen
		}

		srv := api.NewServer(src, api.Options{
			Location:  location(),
			WeekStart: appConfig.WeekStartDay(),
			MonthCap:  appConfig.MonthCap,
			Token:     appConfig.ServeToken,
			Now:       now,
		})
		defer srv.Close()

		if err := srv.Reload(commandContext(cmd)); err != nil {
			slog.Warn("initial load failed, serving until the next refresh", "error", err)
		}

		runner, err := refresh.Start(appConfig.Refresh, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			_ = srv.Reload(ctx)
		})
		if err != nil {
			return err
		}
		defer runner.Stop()

		httpServer := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			slog.Info("starting HTTP server", "addr", addr, "source", appConfig.Source, "refresh", appConfig.Refresh)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- fmt.Errorf("HTTP server error: %w", err)
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			slog.Info("shutting down", "signal", sig.String())
		case err := <-serverErr:
			return err
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config, 127.0.0.1:8080)")
	rootCmd.AddCommand(serveCmd)
}
