// Package provider identifies the hosted mail service behind a domain from
// its MX records.
//
// Only the first MX answer is consulted. Its exchange host is matched against
// an ordered list of rules and the first rule with a matching substring
// names the provider:
//
//	label, err := provider.Classify(ctx, resolver, "example.com", provider.DefaultRules)
//	// "Google", "Unknown (mx.example.net)", "No MX records found", ...
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/synqronlabs/mailhealth/dns"
)

// ErrDNS wraps resolver failures other than "no records".
var ErrDNS = errors.New("provider: DNS lookup error")

// NoMXRecords is the label reported for a domain without MX records.
const NoMXRecords = "No MX records found"

// Rule maps exchange host substrings to a provider label.
type Rule struct {
	Label string

	// Substrings are matched against the lower-cased exchange host.
	Substrings []string
}

// Matches reports whether host contains any of the rule's substrings.
// host must already be lower-cased.
func (r Rule) Matches(host string) bool {
	for _, s := range r.Substrings {
		if strings.Contains(host, s) {
			return true
		}
	}
	return false
}

// DefaultRules is the built-in provider list. Order matters: the first
// matching rule wins.
var DefaultRules = []Rule{
	{Label: "Google", Substrings: []string{"google"}},
	{Label: "Microsoft", Substrings: []string{"outlook", "microsoft"}},
	{Label: "Amazon SES", Substrings: []string{"amazonses"}},
	{Label: "Mimecast", Substrings: []string{"mimecast"}},
	{Label: "Mailgun", Substrings: []string{"mailgun"}},
	{Label: "SendGrid", Substrings: []string{"sendgrid"}},
	{Label: "ProtonMail", Substrings: []string{"protonmail"}},
	{Label: "Zoho", Substrings: []string{"zoho"}},
	{Label: "Cloudflare Email Routing", Substrings: []string{"cloudflare"}},
	{Label: "Proofpoint", Substrings: []string{"pphosted", "proofpoint"}},
	{Label: "Barracuda", Substrings: []string{"barracuda"}},
	{Label: "Mailprotector", Substrings: []string{"mailprotector"}},
	{Label: "SpamHero", Substrings: []string{"spamhero"}},
}

// Unknown returns the label for a host no rule matched.
func Unknown(host string) string {
	return "Unknown (" + host + ")"
}

// Match returns the label of the first rule matching host, or Unknown(host).
// The host is lower-cased and its trailing root dot removed before matching.
func Match(host string, rules []Rule) string {
	host = normalizeHost(host)
	for _, r := range rules {
		if r.Matches(host) {
			return r.Label
		}
	}
	return Unknown(host)
}

func normalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

// Classify looks up the MX records of domain and labels its mail provider.
//
// A domain without MX records yields NoMXRecords and no error. Any other DNS
// failure is returned wrapped in ErrDNS. A nil rules slice selects
// DefaultRules.
func Classify(ctx context.Context, resolver dns.Resolver, domain string, rules []Rule) (string, error) {
	return ClassifyWithLogger(ctx, resolver, domain, rules, slog.Default())
}

// ClassifyWithLogger is Classify with an explicit logger.
func ClassifyWithLogger(ctx context.Context, resolver dns.Resolver, domain string, rules []Rule, logger *slog.Logger) (string, error) {
	if rules == nil {
		rules = DefaultRules
	}

	result, err := resolver.LookupMX(ctx, domain)
	if err != nil {
		if dns.IsNotFound(err) {
			return NoMXRecords, nil
		}
		return "", fmt.Errorf("%w: lookup MX %s: %w", ErrDNS, domain, err)
	}
	if len(result.Records) == 0 || result.Records[0] == nil {
		return NoMXRecords, nil
	}

	host := result.Records[0].Host
	label := Match(host, rules)
	logger.Debug("classified mail provider",
		slog.String("domain", domain),
		slog.String("mx", host),
		slog.Int("answers", len(result.Records)),
		slog.String("provider", label),
	)
	return label, nil
}
