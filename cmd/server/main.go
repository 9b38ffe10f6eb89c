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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Tiffanyxxx3238/poopalooza-server/internal/config"
	"github.com/Tiffanyxxx3238/poopalooza-server/pkg/api"
	"github.com/Tiffanyxxx3238/poopalooza-server/pkg/gateway"
	zladapter "github.com/Tiffanyxxx3238/poopalooza-server/pkg/gateway/logger/zerolog"
	prommetrics "github.com/Tiffanyxxx3238/poopalooza-server/pkg/gateway/metrics/prometheus"
	"github.com/Tiffanyxxx3238/poopalooza-server/pkg/provider/gemini"
)

const version = "1.0.0"

func main() {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := run(zl); err != nil {
		zl.Fatal().Err(err).Msg("server exited")
	}
}

func run(zl zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zladapter.NewLogger(zl)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := prommetrics.NewMetrics(registry, "poopalooza")

	// A missing credential leaves the failover manager uninitialized: the
	// service still starts and reports unhealthy instead of crashing.
	var gen gateway.Generator
	if cfg.APIKey == "" {
		zl.Warn().Msg("GOOGLE_API_KEY is not set, assistant requests will fail")
	} else {
		client, err := gemini.New(gemini.Config{APIKey: cfg.APIKey})
		if err != nil {
			zl.Warn().Err(err).Msg("provider client construction failed")
		} else {
			gen = client
		}
	}

	state := gateway.NewUsageState()
	tracker, err := gateway.NewTracker(state, gateway.TrackerConfig{
		PerMinute: cfg.PerMinuteLimit,
		PerDay:    cfg.PerDayLimit,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		return fmt.Errorf("create tracker: %w", err)
	}

	failover := gateway.NewFailover(gen, tracker, gateway.FailoverConfig{
		Candidates: cfg.Models,
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.BaseDelay,
		Logger:     logger,
		Metrics:    metrics,
	})

	gw, err := gateway.New(gen, tracker, failover, gateway.Config{
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	handler, err := api.NewHandler(api.Config{
		Gateway:        gw,
		ServiceName:    "poopalooza-assistant",
		Version:        version,
		ProviderHourly: cfg.ProviderHourlyLimit,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	router := handler.Routes()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info().
			Int("port", cfg.Port).
			Strs("models", cfg.Models).
			Int("per_minute", cfg.PerMinuteLimit).
			Int("per_day", cfg.PerDayLimit).
			Bool("provider_configured", gen != nil).
			Msg("assistant server starting")
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		zl.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
