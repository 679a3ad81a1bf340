// Package dkim probes a domain for published DomainKeys Identified Mail
// (DKIM) public keys.
//
// DKIM keys live at "<selector>._domainkey.<domain>", and the selector names
// cannot be enumerated through DNS. Probe therefore queries a fixed list of
// commonly used selectors and reports the ones that publish a "v=DKIM1"
// record. Key material is shortened for display by TrimRecord.
//
// # Basic Usage
//
//	finding, err := dkim.Probe(ctx, resolver, "example.com", dkim.DefaultSelectors)
//	if err != nil {
//	    // DNS failure other than "no records" on some selector
//	}
//	for _, r := range finding.Results {
//	    fmt.Println(r.Display)
//	}
package dkim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/synqronlabs/mailhealth/dns"
)

// ErrDNS wraps resolver failures other than "no records".
var ErrDNS = errors.New("dkim: DNS lookup error")

// DefaultSelectors are the selectors probed when the caller supplies none.
// The order is the display order of the results.
var DefaultSelectors = []string{
	"default",
	"google",
	"dkim",
	"k1",
	"selector1",
	"selector2",
	"microsoft",
	"sendgrid",
}

const versionTag = "v=DKIM1"

// SelectorResult is one DKIM record found under a probed selector.
type SelectorResult struct {
	Selector string

	// Record is the raw TXT text.
	Record string

	// Display is "<selector>: <TrimRecord(Record)>".
	Display string
}

// Finding is the result of probing a domain's DKIM selectors.
type Finding struct {
	// Results in selector-list order, then answer order within a selector.
	Results []SelectorResult
}

// Found reports whether any selector published a DKIM record.
func (f Finding) Found() bool {
	return len(f.Results) > 0
}

// Displays returns the display strings of all results.
func (f Finding) Displays() []string {
	if len(f.Results) == 0 {
		return nil
	}
	out := make([]string, len(f.Results))
	for i, r := range f.Results {
		out[i] = r.Display
	}
	return out
}

// Summary returns the one-line status text shown in reports.
func (f Finding) Summary() string {
	if !f.Found() {
		return "No DKIM records found for common selectors"
	}
	return fmt.Sprintf("DKIM records found for %d selector(s)", len(f.Results))
}

// RecordName returns the DNS name holding the DKIM key for selector.
func RecordName(selector, domain string) string {
	return selector + "._domainkey." + domain
}

// Prober queries DKIM selectors of a domain.
type Prober struct {
	Resolver dns.Resolver

	// Selectors to probe. If empty, DefaultSelectors is used.
	Selectors []string

	// Logger for debug output. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Probe is a convenience wrapper around Prober.Probe.
func Probe(ctx context.Context, resolver dns.Resolver, domain string, selectors []string) (Finding, error) {
	p := &Prober{Resolver: resolver, Selectors: selectors}
	return p.Probe(ctx, domain)
}

// Probe queries every selector concurrently. Selectors without records are
// skipped. A DNS failure on any selector cancels the remaining queries and
// is returned wrapped in ErrDNS.
func (p *Prober) Probe(ctx context.Context, domain string) (Finding, error) {
	selectors := p.Selectors
	if len(selectors) == 0 {
		selectors = DefaultSelectors
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// One slot per selector keeps output in selector order.
	slots := make([][]SelectorResult, len(selectors))

	g, gctx := errgroup.WithContext(ctx)
	for i, selector := range selectors {
		i, selector := i, selector
		g.Go(func() error {
			found, err := p.probeSelector(gctx, selector, domain)
			if err != nil {
				return err
			}
			slots[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Finding{}, err
	}

	var f Finding
	for _, found := range slots {
		f.Results = append(f.Results, found...)
	}
	logger.Debug("probed DKIM selectors",
		slog.String("domain", domain),
		slog.Int("selectors", len(selectors)),
		slog.Int("found", len(f.Results)),
	)
	return f, nil
}

func (p *Prober) probeSelector(ctx context.Context, selector, domain string) ([]SelectorResult, error) {
	name := RecordName(selector, domain)

	result, err := p.Resolver.LookupTXT(ctx, name)
	if err != nil {
		if dns.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: lookup %s: %w", ErrDNS, name, err)
	}

	var found []SelectorResult
	for _, txt := range result.Records {
		if !strings.Contains(txt, versionTag) {
			continue
		}
		found = append(found, SelectorResult{
			Selector: selector,
			Record:   txt,
			Display:  selector + ": " + TrimRecord(txt),
		})
	}
	return found, nil
}
