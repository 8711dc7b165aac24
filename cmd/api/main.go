package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
)

func main() {

	// .env first so kong's env fallbacks can see it
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("calculator"),
		kong.Description("On-screen calculator served over HTTP."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(kctx.Run())
}

func serve(cfg config.Config) error {

	ctx := context.Background()

	// Logger
	if err := observability.InitLogger(cfg.Verbose); err != nil {
		return err
	}
	defer observability.SyncLogger()

	if cfg.Telemetry {
		// Tracing
		traceShutdown, err := observability.InitTracing(ctx)
		if err != nil {
			return err
		}
		defer traceShutdown(ctx)

		// Log export
		if cfg.OTLPLogs {
			logShutdown, err := observability.InitLogging(ctx)
			if err != nil {
				return err
			}
			defer logShutdown(ctx)
		}
	}

	store := calculator.NewStore()

	// Metrics
	metricShutdown, err := initMetrics(ctx, cfg.Telemetry, prometheus.DefaultRegisterer, store)
	if err != nil {
		return err
	}
	defer metricShutdown(ctx)

	// Session eviction
	janitor, err := calculator.NewJanitor(store, cfg.SweepInterval, cfg.SessionTTL)
	if err != nil {
		return err
	}
	janitor.Start()
	defer janitor.Stop()

	// Router
	svc, err := calculator.NewService(store)
	if err != nil {
		return err
	}
	router := server.NewRouter(svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.Duration("session_ttl", cfg.SessionTTL),
			zap.Bool("telemetry", cfg.Telemetry),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	return waitForShutdown(srv)
}

func waitForShutdown(srv *http.Server) error {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	observability.Logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
