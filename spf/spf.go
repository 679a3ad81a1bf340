package spf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/synqronlabs/mailhealth/dns"
)

// ErrDNS wraps resolver failures other than "no records".
var ErrDNS = errors.New("spf: DNS lookup error")

// Status classifies the SPF records found for a domain.
type Status string

const (
	// StatusAbsent indicates no TXT record starts with "v=spf1".
	StatusAbsent Status = "absent"

	// StatusValid indicates at least one TXT record starts with "v=spf1".
	StatusValid Status = "valid"

	// StatusInvalid is rendered with the discovered records. Records are
	// selected by their "v=spf1" prefix, so Analyze never produces it.
	StatusInvalid Status = "invalid"
)

// Finding is the result of analyzing a domain's SPF records.
type Finding struct {
	Status Status

	// Records holds the raw text of every TXT answer starting with "v=spf1",
	// in answer order.
	Records []string

	// TrustedSenders holds the ip4:, ip6:, include:, a: and mx: mechanisms
	// and the ~all, -all and ?all terms, in record then token order.
	TrustedSenders []string

	// Ignored counts TXT answers that are not SPF records.
	Ignored int
}

// Summary returns the one-line status text shown in reports.
func (f Finding) Summary() string {
	switch f.Status {
	case StatusValid:
		return "Valid SPF records"
	case StatusInvalid:
		return "Invalid SPF records, but found: " + strings.Join(f.Records, ", ")
	default:
		return "No SPF records found"
	}
}

// HardFail reports whether the domain ends its policy with "-all".
func (f Finding) HardFail() bool {
	return slices.Contains(f.TrustedSenders, QualifierFail)
}

// Analyze looks up the TXT records of domain and classifies its SPF records.
//
// A domain without TXT records yields a StatusAbsent finding and no error.
// Any other DNS failure is returned wrapped in ErrDNS.
func Analyze(ctx context.Context, resolver dns.Resolver, domain string) (Finding, error) {
	return AnalyzeWithLogger(ctx, resolver, domain, slog.Default())
}

// AnalyzeWithLogger is Analyze with an explicit logger.
func AnalyzeWithLogger(ctx context.Context, resolver dns.Resolver, domain string, logger *slog.Logger) (Finding, error) {
	result, err := resolver.LookupTXT(ctx, domain)
	if err != nil {
		if dns.IsNotFound(err) {
			return Finding{Status: StatusAbsent}, nil
		}
		return Finding{}, fmt.Errorf("%w: lookup %s: %w", ErrDNS, domain, err)
	}

	f := FromRecords(result.Records)
	if f.Ignored > 0 {
		logger.Debug("ignored non-SPF TXT records",
			slog.String("domain", domain),
			slog.Int("ignored", f.Ignored),
		)
	}
	return f, nil
}

// FromRecords classifies an already-fetched TXT answer set.
func FromRecords(txts []string) Finding {
	f := Finding{Status: StatusAbsent}

	for _, txt := range txts {
		if !strings.HasPrefix(txt, versionPrefix) {
			f.Ignored++
			continue
		}
		f.Records = append(f.Records, txt)
		f.TrustedSenders = append(f.TrustedSenders, TrustedSenders(txt)...)
	}

	if len(f.Records) > 0 {
		f.Status = StatusValid
	}
	return f
}
