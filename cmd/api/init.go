package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
)

// initMetrics initialises all metric providers and application-specific
// metric instruments. Without telemetry the OTel instruments stay on the
// global no-op provider and only the Prometheus collectors report.
func initMetrics(ctx context.Context, telemetry bool, reg prometheus.Registerer, store *calculator.Store) (func(context.Context) error, error) {
	shutdown := func(context.Context) error { return nil }

	if telemetry {
		var err error
		shutdown, err = observability.InitMetrics(ctx)
		if err != nil {
			return nil, err
		}
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	if err := calculator.RegisterSessionGauge(reg, store); err != nil {
		return nil, err
	}

	return shutdown, nil
}
