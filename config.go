package mailhealth

import (
	"log/slog"

	"github.com/synqronlabs/mailhealth/dkim"
	"github.com/synqronlabs/mailhealth/dns"
	"github.com/synqronlabs/mailhealth/provider"
)

// Config contains the settings of one Check run.
//
// Callers normally build it through options:
//
//	report, err := mailhealth.Check(ctx, "example.com",
//	    mailhealth.WithResolver(resolver),
//	    mailhealth.WithLogger(logger),
//	)
type Config struct {
	// Resolver answers every query of the run.
	// Default: a dns.DNSResolver built from an empty dns.ResolverConfig.
	Resolver dns.Resolver

	// Logger receives debug output of the analyzers.
	// Default: slog.Default()
	Logger *slog.Logger

	// Selectors are the DKIM selectors to probe, in display order.
	// Default: dkim.DefaultSelectors
	Selectors []string

	// ProviderRules classify the first MX host, first match wins.
	// Default: provider.DefaultRules
	ProviderRules []provider.Rule

	// Sequential runs the analyzers one after another instead of
	// concurrently. The report is the same either way.
	Sequential bool
}

// Option configures a Check run.
type Option func(*Config)

// WithResolver sets the resolver shared by all analyzers.
func WithResolver(r dns.Resolver) Option {
	return func(c *Config) {
		c.Resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithSelectors replaces the DKIM selector list.
func WithSelectors(selectors []string) Option {
	return func(c *Config) {
		c.Selectors = selectors
	}
}

// WithProviderRules replaces the mail provider rules.
func WithProviderRules(rules []provider.Rule) Option {
	return func(c *Config) {
		c.ProviderRules = rules
	}
}

// WithSequential disables concurrent analyzers.
func WithSequential() Option {
	return func(c *Config) {
		c.Sequential = true
	}
}

// DefaultConfig returns a Config with sensible defaults.
// The resolver is left nil and created lazily by Check.
func DefaultConfig() *Config {
	return &Config{
		Logger:        slog.Default(),
		Selectors:     dkim.DefaultSelectors,
		ProviderRules: provider.DefaultRules,
	}
}

func newConfig(opts ...Option) *Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if len(c.Selectors) == 0 {
		c.Selectors = dkim.DefaultSelectors
	}
	if c.ProviderRules == nil {
		c.ProviderRules = provider.DefaultRules
	}
	if c.Resolver == nil {
		c.Resolver = dns.NewResolver(dns.ResolverConfig{})
	}
	return c
}
