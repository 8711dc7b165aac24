package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-chi-calculator/internal/calc"
	"go-chi-calculator/internal/calculator"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var (
		cli CLI
		out bytes.Buffer
	)
	parser, err := kong.New(&cli, kong.Name("calculator"), kong.Writers(&out, &out), kong.Exit(func(int) {}))
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	err = kctx.Run()
	return out.String(), err
}

func TestPressPrintsScreen(t *testing.T) {
	out, err := run(t, "press", "7", "+", "3", "x", "2", "=")
	require.NoError(t, err)
	assert.Equal(t, "7 + 3 × 2 =\n20\n", out)
}

func TestPressGroupsDisplay(t *testing.T) {
	out, err := run(t, "press", "1", "2", "3", "4", "5", ".", "5")
	require.NoError(t, err)
	assert.Equal(t, "\n12,345.5\n", out)
}

func TestPressUnknownKey(t *testing.T) {
	_, err := run(t, "press", "7", "sqrt")
	assert.True(t, errors.Is(err, calc.ErrUnknownKey))
}

func TestInitMetricsWithoutTelemetry(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := calculator.NewStore()

	shutdown, err := initMetrics(t.Context(), false, reg, store)
	require.NoError(t, err)
	require.NoError(t, shutdown(t.Context()))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "calculator_active_sessions", families[0].GetName())
}
