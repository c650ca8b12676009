// Package config parses and validates the server and dashboard binaries'
// command-line flags.
package config

import (
	"flag"
	"fmt"
	"strings"
)

// Error wraps a configuration validation failure.
type Error struct {
	Cause error
}

func (e *Error) Error() string { return fmt.Sprintf("config: %v", e.Cause) }
func (e *Error) Unwrap() error { return e.Cause }

// ServerConfig holds the obaggd binary's settings.
type ServerConfig struct {
	Symbol    string
	Port      int
	Reconnect bool
	NATSURL   string
	AdminPort int
	LogLevel  string
}

// ParseServerFlags parses args (normally os.Args[1:]) into a ServerConfig.
// Both short and long forms of each flag bind to the same variable, the
// way a single flag.StringVar call cannot express two names at once.
func ParseServerFlags(args []string) (*ServerConfig, error) {
	fs := flag.NewFlagSet("obaggd", flag.ContinueOnError)

	cfg := &ServerConfig{}

	fs.StringVar(&cfg.Symbol, "s", "ETH/BTC", "trading symbol to aggregate, e.g. ETH/BTC")
	fs.StringVar(&cfg.Symbol, "symbol", "ETH/BTC", "trading symbol to aggregate, e.g. ETH/BTC")

	fs.IntVar(&cfg.Port, "p", 33333, "gRPC listen port")
	fs.IntVar(&cfg.Port, "port", 33333, "gRPC listen port")

	fs.BoolVar(&cfg.Reconnect, "reconnect", false, "reconnect with backoff on transport failure instead of exiting")
	fs.StringVar(&cfg.NATSURL, "nats-url", "", "optional NATS server URL for best-effort snapshot fan-out")
	fs.IntVar(&cfg.AdminPort, "admin-port", 0, "admin HTTP port for /healthz and /metrics, 0 disables it")

	if err := fs.Parse(args); err != nil {
		return nil, &Error{Cause: err}
	}

	if err := validateSymbol(cfg.Symbol); err != nil {
		return nil, &Error{Cause: err}
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, &Error{Cause: fmt.Errorf("port %d out of range", cfg.Port)}
	}
	if cfg.AdminPort < 0 || cfg.AdminPort > 65535 {
		return nil, &Error{Cause: fmt.Errorf("admin-port %d out of range", cfg.AdminPort)}
	}

	return cfg, nil
}

// DashboardConfig holds the obagdash binary's settings.
type DashboardConfig struct {
	Host string
	Port int
}

// ParseDashboardFlags parses args into a DashboardConfig.
func ParseDashboardFlags(args []string) (*DashboardConfig, error) {
	fs := flag.NewFlagSet("obagdash", flag.ContinueOnError)

	cfg := &DashboardConfig{}

	fs.StringVar(&cfg.Host, "host", "::1", "server host to connect to")
	fs.IntVar(&cfg.Port, "p", 33333, "server gRPC port to connect to")
	fs.IntVar(&cfg.Port, "port", 33333, "server gRPC port to connect to")

	if err := fs.Parse(args); err != nil {
		return nil, &Error{Cause: err}
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, &Error{Cause: fmt.Errorf("port %d out of range", cfg.Port)}
	}

	return cfg, nil
}

func validateSymbol(symbol string) error {
	parts := strings.Split(symbol, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("symbol %q must be of the form BASE/QUOTE", symbol)
	}
	return nil
}
