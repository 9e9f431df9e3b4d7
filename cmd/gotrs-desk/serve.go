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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/gotrs-io/gotrs-desk/internal/api"
	"github.com/gotrs-io/gotrs-desk/internal/metrics"
	"github.com/gotrs-io/gotrs-desk/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.openDatabase(ctx); err != nil {
		return err
	}
	if err := a.openRedis(ctx); err != nil {
		return err
	}
	if a.redis == nil {
		a.logger.Warn("redis disabled, revoked sessions are not checked")
	}

	if !a.cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := api.RouterOptions{
		Auth:     middleware.NewAuthMiddleware(a.jwtManager(), a.revocations()),
		Database: a.qb.DB(),
		Logger:   a.logger,
	}
	var reg *prometheus.Registry
	if a.cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg.MustRegister(collectors.NewDBStatsCollector(a.qb.DB().DB, a.cfg.Database.Name))
		opts.Gatherer = reg
		opts.MetricsPath = a.cfg.Metrics.Path
		opts.HTTPMetrics = metrics.NewHTTP(reg, a.cfg.Metrics.Namespace)
	}
	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}
	opts.Tickets, err = a.listingService(registerer)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         a.cfg.Server.GetServerAddr(),
		Handler:      api.NewRouter(opts),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	a.logger.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}
