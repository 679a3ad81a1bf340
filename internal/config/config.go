// Package config reads the command's settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/synqronlabs/mailhealth/dns"
	"github.com/synqronlabs/mailhealth/report"
)

// Environment variables.
const (
	EnvResolver    = "MAILHEALTH_RESOLVER"
	EnvNameservers = "MAILHEALTH_NAMESERVERS"
	EnvTimeout     = "MAILHEALTH_TIMEOUT"
	EnvRetries     = "MAILHEALTH_RETRIES"
	EnvFormat      = "MAILHEALTH_FORMAT"
	EnvLogLevel    = "MAILHEALTH_LOG_LEVEL"
	EnvSelectors   = "MAILHEALTH_SELECTORS"
	EnvNoColor     = "NO_COLOR"
)

// Resolver modes.
const (
	// ResolverDirect queries nameservers with dns.DNSResolver.
	ResolverDirect = "direct"
	// ResolverSystem goes through the host resolver with dns.StdResolver.
	ResolverSystem = "system"
)

type Config struct {
	ResolverMode string
	Resolver     dns.ResolverConfig
	Format       report.Format
	LogLevel     slog.Level
	Selectors    []string
	NoColor      bool
}

// Load reads the configuration. Unset variables keep their defaults; set but
// unparsable ones are errors.
func Load() (*Config, error) {
	cfg := &Config{
		ResolverMode: ResolverDirect,
		Format:       report.FormatTable,
		LogLevel:     slog.LevelWarn,
		NoColor:      os.Getenv(EnvNoColor) != "",
	}

	switch mode := strings.ToLower(strings.TrimSpace(os.Getenv(EnvResolver))); mode {
	case "":
	case ResolverDirect, ResolverSystem:
		cfg.ResolverMode = mode
	default:
		return nil, fmt.Errorf("%s: unknown resolver %q (want %s or %s)", EnvResolver, mode, ResolverDirect, ResolverSystem)
	}

	cfg.Resolver.Nameservers = splitList(os.Getenv(EnvNameservers))
	cfg.Selectors = splitList(os.Getenv(EnvSelectors))

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s: invalid duration %q", EnvTimeout, v)
		}
		cfg.Resolver.Timeout = d
	}

	if v := os.Getenv(EnvRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s: invalid retry count %q", EnvRetries, v)
		}
		cfg.Resolver.Retries = n
		if n == 0 {
			cfg.Resolver.Retries = dns.NoRetries
		}
	}

	format, err := report.ParseFormat(os.Getenv(EnvFormat))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvFormat, err)
	}
	cfg.Format = format

	if v := os.Getenv(EnvLogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("%s: invalid level %q", EnvLogLevel, v)
		}
	}

	return cfg, nil
}

// NewResolver builds the resolver selected by ResolverMode.
func (c *Config) NewResolver() dns.Resolver {
	if c.ResolverMode == ResolverSystem {
		return dns.NewStdResolver(c.Resolver)
	}
	return dns.NewResolver(c.Resolver)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
