// Package config holds the service settings. Values come from command
// line flags, falling back to environment variables (optionally loaded
// from a .env file) and then to defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is embedded into the serve command; kong fills it from flags
// and env.
type Config struct {
	Addr          string        `help:"HTTP listen address." default:":8080" env:"CALC_ADDR"`
	SessionTTL    time.Duration `help:"Idle time after which a calculator session is discarded." default:"30m" env:"CALC_SESSION_TTL"`
	SweepInterval time.Duration `help:"How often idle sessions are swept." default:"1m" env:"CALC_SWEEP_INTERVAL"`
	Telemetry     bool          `help:"Export traces and metrics over OTLP." env:"CALC_TELEMETRY"`
	OTLPLogs      bool          `name:"otlp-logs" help:"Also export logs over OTLP (needs --telemetry)." env:"CALC_OTLP_LOGS"`
	Verbose       bool          `short:"v" help:"Human readable debug logging." env:"CALC_VERBOSE"`
}

// Validate is called by kong after parsing.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.SweepInterval)
	}
	if c.OTLPLogs && !c.Telemetry {
		return errors.New("--otlp-logs requires --telemetry")
	}
	return nil
}

// LoadDotEnv loads environment variables from the given files, or .env
// when none are given. Missing files are not an error and existing
// process environment variables are not overridden.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}
