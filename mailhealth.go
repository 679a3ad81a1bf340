// Package mailhealth assesses the email-authentication posture of a domain.
//
// A check inspects the published SPF, DMARC and DKIM records and the MX
// configuration of a domain and combines them into a health score out of 100
// with remediation suggestions.
//
// # Checking a Domain
//
//	report, err := mailhealth.Check(ctx, "example.com")
//	if err != nil {
//	    // invalid domain or a DNS failure other than "no records"
//	    log.Fatal(err)
//	}
//	fmt.Println(report.MailProvider)
//	fmt.Println(report.SPF.Summary())
//	fmt.Printf("%d/%d\n", report.Health.Score, report.Health.MaxScore)
//
// A domain without any records is not an error: it produces a report with a
// score of 0 and a suggestion per category.
//
// # Resolvers
//
// One resolver answers every query of a run. By default it is a
// dns.DNSResolver using the system nameservers. Tests and embedders can
// supply their own:
//
//	resolver := dns.MockResolver{
//	    TXT: map[string][]string{
//	        "example.com.": {"v=spf1 ip4:192.0.2.0/24 -all"},
//	    },
//	}
//	report, err := mailhealth.Check(ctx, "example.com", mailhealth.WithResolver(resolver))
//
// # Analyzers
//
// The analyzers live in their own packages and can be used on their own:
//   - spf: classifies the TXT records of the domain
//   - dmarc: classifies the TXT records at _dmarc.<domain>
//   - dkim: probes a list of well-known selectors
//   - provider: labels the first MX host
//   - score: weighs the findings
//
// # Output
//
// The report package renders a Report as a table, JSON or MessagePack.
package mailhealth

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/synqronlabs/mailhealth/dkim"
	"github.com/synqronlabs/mailhealth/dmarc"
	"github.com/synqronlabs/mailhealth/provider"
	"github.com/synqronlabs/mailhealth/score"
	"github.com/synqronlabs/mailhealth/spf"
	"github.com/synqronlabs/mailhealth/utils"
)

// Report is the result of checking one domain.
type Report struct {
	// Domain is the normalized name that was queried.
	Domain string

	// OrganizationalDomain is the registrable domain under the public suffix.
	OrganizationalDomain string

	// MailProvider is the provider label derived from the first MX record.
	MailProvider string

	SPF    spf.Finding
	DMARC  dmarc.Finding
	DKIM   dkim.Finding
	Health score.HealthScore
}

// Check analyzes domain and returns its report.
//
// The domain is validated with utils.NormalizeDomain; a name that cannot be
// queried yields an error wrapping ErrInvalidDomain. A DNS failure other than
// "no records" in any analyzer aborts the run and is returned; no partial
// report is produced.
func Check(ctx context.Context, domain string, opts ...Option) (*Report, error) {
	cfg := newConfig(opts...)

	name, err := utils.NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger.With(
		slog.String("run_id", utils.GenerateID()),
		slog.String("domain", name),
	)
	logger.Debug("starting domain check",
		slog.Int("selectors", len(cfg.Selectors)),
		slog.Bool("sequential", cfg.Sequential),
	)

	r := &Report{
		Domain:               name,
		OrganizationalDomain: utils.OrganizationalDomain(name),
	}

	steps := []func(context.Context) error{
		func(ctx context.Context) (err error) {
			r.MailProvider, err = provider.ClassifyWithLogger(ctx, cfg.Resolver, name, cfg.ProviderRules, logger)
			return err
		},
		func(ctx context.Context) (err error) {
			r.SPF, err = spf.AnalyzeWithLogger(ctx, cfg.Resolver, name, logger)
			return err
		},
		func(ctx context.Context) (err error) {
			r.DMARC, err = dmarc.AnalyzeWithLogger(ctx, cfg.Resolver, name, logger)
			return err
		},
		func(ctx context.Context) (err error) {
			p := &dkim.Prober{Resolver: cfg.Resolver, Selectors: cfg.Selectors, Logger: logger}
			r.DKIM, err = p.Probe(ctx, name)
			return err
		},
	}

	if err := run(ctx, steps, cfg.Sequential); err != nil {
		logger.Debug("domain check failed", slog.Any("error", err))
		return nil, fmt.Errorf("check %s: %w", name, err)
	}

	r.Health = score.Calculate(r.SPF, r.DMARC, r.DKIM)

	logger.Info("domain check completed",
		slog.String("provider", r.MailProvider),
		slog.Int("score", r.Health.Score),
		slog.Int("suggestions", len(r.Health.Suggestions)),
	)
	return r, nil
}

// run executes the steps in order or concurrently. Each step writes its own
// report field, so the two modes produce the same report.
func run(ctx context.Context, steps []func(context.Context) error, sequential bool) error {
	if sequential {
		for _, step := range steps {
			if err := step(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, step := range steps {
		step := step
		g.Go(func() error {
			return step(gctx)
		})
	}
	return g.Wait()
}
