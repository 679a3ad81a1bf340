package dmarc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/synqronlabs/mailhealth/dns"
	"github.com/synqronlabs/mailhealth/utils"
)

const versionPrefix = "v=DMARC1"

// RecordName returns the DNS name holding the DMARC record of domain.
func RecordName(domain string) string {
	return "_dmarc." + domain
}

// Analyze looks up the DMARC TXT record for the given domain.
//
// A name without TXT records yields a StatusAbsent finding and no error. Any
// other DNS failure is returned wrapped in ErrDNS.
func Analyze(ctx context.Context, resolver dns.Resolver, domain string) (Finding, error) {
	return AnalyzeWithLogger(ctx, resolver, domain, slog.Default())
}

// AnalyzeWithLogger is Analyze with an explicit logger.
func AnalyzeWithLogger(ctx context.Context, resolver dns.Resolver, domain string, logger *slog.Logger) (Finding, error) {
	name := RecordName(domain)

	result, err := resolver.LookupTXT(ctx, name)
	if err != nil {
		if dns.IsNotFound(err) {
			return Finding{Status: StatusAbsent}, nil
		}
		return Finding{}, fmt.Errorf("%w: lookup %s: %w", ErrDNS, name, err)
	}

	f := FromRecords(result.Records)
	if f.Ignored > 0 {
		logger.Debug("ignored non-DMARC TXT records",
			slog.String("name", name),
			slog.Int("ignored", f.Ignored),
		)
	}
	if f.Status == StatusMultipleInvalid {
		logger.Debug("multiple DMARC records published",
			slog.String("name", name),
			slog.Int("records", len(f.Records)),
		)
	}
	return f, nil
}

// FromRecords classifies an already-fetched TXT answer set.
func FromRecords(txts []string) Finding {
	var f Finding

	for _, txt := range txts {
		if !strings.HasPrefix(txt, versionPrefix) {
			f.Ignored++
			continue
		}
		f.Records = append(f.Records, txt)
		f.Tags = append(f.Tags, utils.SplitTags(txt)...)
	}

	switch len(f.Records) {
	case 0:
		f.Status = StatusAbsent
	case 1:
		f.Status = StatusValid
	default:
		f.Status = StatusMultipleInvalid
	}
	return f
}
