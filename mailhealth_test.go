package mailhealth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synqronlabs/mailhealth/dkim"
	"github.com/synqronlabs/mailhealth/dmarc"
	"github.com/synqronlabs/mailhealth/dns"
	"github.com/synqronlabs/mailhealth/provider"
	"github.com/synqronlabs/mailhealth/score"
	"github.com/synqronlabs/mailhealth/spf"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func check(t *testing.T, resolver dns.Resolver, opts ...Option) *Report {
	t.Helper()
	opts = append([]Option{WithResolver(resolver), WithLogger(quietLogger)}, opts...)
	r, err := Check(context.Background(), "example.com", opts...)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

func TestCheckNothingPublished(t *testing.T) {
	r := check(t, dns.MockResolver{})

	assert.Equal(t, "example.com", r.Domain)
	assert.Equal(t, "example.com", r.OrganizationalDomain)
	assert.Equal(t, "No MX records found", r.MailProvider)
	assert.Equal(t, "No SPF records found", r.SPF.Summary())
	assert.Equal(t, "No DMARC record found", r.DMARC.Summary())
	assert.Equal(t, "No DKIM records found for common selectors", r.DKIM.Summary())
	assert.Equal(t, 0, r.Health.Score)
	assert.Equal(t, 100, r.Health.MaxScore)
	assert.Len(t, r.Health.Suggestions, 3)
}

func TestCheckSPFHardFail(t *testing.T) {
	r := check(t, dns.MockResolver{
		TXT: map[string][]string{
			"example.com.": {"v=spf1 ip4:1.2.3.4 -all"},
		},
	})

	assert.Equal(t, spf.StatusValid, r.SPF.Status)
	assert.Equal(t, []string{"ip4:1.2.3.4", "-all"}, r.SPF.TrustedSenders)
	assert.Equal(t, 33, r.Health.Points(score.CategorySPF))
	assert.NotContains(t, r.Health.Suggestions, score.SuggestSPFHardFail)
	assert.NotContains(t, r.Health.Suggestions, score.SuggestSPFImplement)
}

func TestCheckDMARCQuarantine(t *testing.T) {
	r := check(t, dns.MockResolver{
		TXT: map[string][]string{
			"_dmarc.example.com.": {"v=DMARC1; p=quarantine; rua=mailto:x@y.com"},
		},
	})

	assert.Equal(t, dmarc.StatusValid, r.DMARC.Status)
	assert.Equal(t, 25, r.Health.Points(score.CategoryDMARC))
	assert.Contains(t, r.Health.Suggestions, score.SuggestDMARCReject)
}

func TestCheckDMARCMultiple(t *testing.T) {
	r := check(t, dns.MockResolver{
		TXT: map[string][]string{
			"_dmarc.example.com.": {"v=DMARC1; p=reject", "v=DMARC1; p=none"},
		},
	})

	assert.Equal(t, dmarc.StatusMultipleInvalid, r.DMARC.Status)
	assert.Equal(t, 0, r.Health.Points(score.CategoryDMARC))
	assert.Contains(t, r.Health.Suggestions, score.SuggestDMARCImplement)
}

func TestCheckDKIMDefaultSelector(t *testing.T) {
	key := "MIGfMA0GCSqGSIb3DQEBAQUAA4GNADCBiQKBgQDw"
	r := check(t, dns.MockResolver{
		TXT: map[string][]string{
			"default._domainkey.example.com.": {"v=DKIM1; k=rsa; p=" + key},
		},
	})

	require.Len(t, r.DKIM.Results, 1)
	assert.Equal(t, "default: v=DKIM1; k=rsa; p=MIGfMA0G...iQKBgQDw", r.DKIM.Results[0].Display)
	assert.Equal(t, 33, r.Health.Points(score.CategoryDKIM))
}

func fullResolver() dns.MockResolver {
	return dns.MockResolver{
		TXT: map[string][]string{
			"example.com.": {
				"google-site-verification=abc123",
				"v=spf1 include:_spf.google.com ~all",
			},
			"_dmarc.example.com.":             {"v=DMARC1; p=reject; rua=mailto:dmarc@example.com"},
			"google._domainkey.example.com.":  {"v=DKIM1; k=rsa; p=MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEA"},
			"default._domainkey.example.com.": {"v=DKIM1; p=short"},
		},
		MX: map[string][]*net.MX{
			"example.com.": {
				{Host: "ASPMX.L.GOOGLE.COM.", Pref: 1},
				{Host: "alt1.aspmx.l.google.com.", Pref: 5},
			},
		},
	}
}

func TestCheckFullDomain(t *testing.T) {
	r := check(t, fullResolver())

	assert.Equal(t, "Google", r.MailProvider)
	assert.Equal(t, []string{"include:_spf.google.com", "~all"}, r.SPF.TrustedSenders)
	assert.Equal(t, 1, r.SPF.Ignored)
	assert.Equal(t, []string{"v=DMARC1", "p=reject", "rua=mailto:dmarc@example.com"}, r.DMARC.Tags)
	assert.Equal(t, []string{
		"default: v=DKIM1; p=short",
		"google: v=DKIM1; k=rsa; p=MIIBIjAN...CgKCAQEA",
	}, r.DKIM.Displays())
	assert.Equal(t, 25+34+33, r.Health.Score)
	assert.Equal(t, []string{score.SuggestSPFHardFail}, r.Health.Suggestions)
}

func TestCheckSequentialMatchesConcurrent(t *testing.T) {
	concurrent := check(t, fullResolver())
	sequential := check(t, fullResolver(), WithSequential())
	again := check(t, fullResolver())

	assert.Equal(t, concurrent, sequential)
	assert.Equal(t, concurrent, again)
}

func TestCheckSequentialOrder(t *testing.T) {
	resolver := dns.MockResolver{}.Recording()
	check(t, resolver, WithSequential(), WithSelectors([]string{"s1", "s2"}))

	// DKIM selectors may be queried in any order.
	queries := resolver.Queries()
	require.Len(t, queries, 5)
	assert.Equal(t, []string{
		"mx example.com.",
		"txt example.com.",
		"txt _dmarc.example.com.",
	}, queries[:3])
	assert.ElementsMatch(t, []string{
		"txt s1._domainkey.example.com.",
		"txt s2._domainkey.example.com.",
	}, queries[3:])
}

func TestCheckCustomRules(t *testing.T) {
	resolver := dns.MockResolver{
		MX: map[string][]*net.MX{
			"example.com.": {{Host: "mx1.corp-filter.example.net.", Pref: 10}},
		},
	}

	r := check(t, resolver, WithProviderRules([]provider.Rule{
		{Label: "Corp Filter", Substrings: []string{"corp-filter"}},
	}))
	assert.Equal(t, "Corp Filter", r.MailProvider)
}

func TestCheckResolutionErrorAborts(t *testing.T) {
	tests := []struct {
		name    string
		fail    string
		wantErr error
	}{
		{"mx", "mx example.com.", provider.ErrDNS},
		{"spf", "txt example.com.", spf.ErrDNS},
		{"dmarc", "txt _dmarc.example.com.", dmarc.ErrDNS},
		{"dkim selector", "txt k1._domainkey.example.com.", dkim.ErrDNS},
	}

	for _, tt := range tests {
		for _, sequential := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/sequential=%t", tt.name, sequential), func(t *testing.T) {
				resolver := fullResolver()
				resolver.Fail = []string{tt.fail}

				opts := []Option{WithResolver(resolver), WithLogger(quietLogger)}
				if sequential {
					opts = append(opts, WithSequential())
				}

				r, err := Check(context.Background(), "example.com", opts...)
				require.Error(t, err)
				assert.Nil(t, r)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, dns.ErrDNSServFail)
			})
		}
	}
}

func TestCheckInvalidDomain(t *testing.T) {
	resolver := dns.MockResolver{}.Recording()

	for _, domain := range []string{"", "localhost", "bad..example.com", "-bad.example.com", "exa mple.com"} {
		r, err := Check(context.Background(), domain, WithResolver(resolver), WithLogger(quietLogger))
		assert.ErrorIs(t, err, ErrInvalidDomain, "domain %q", domain)
		assert.Nil(t, r)
	}
	assert.Empty(t, resolver.Queries())
}

func TestCheckNormalizesDomain(t *testing.T) {
	resolver := dns.MockResolver{
		TXT: map[string][]string{
			"mail.example.co.uk.": {"v=spf1 -all"},
		},
	}

	r, err := Check(context.Background(), " mail.example.co.uk. ", WithResolver(resolver), WithLogger(quietLogger))
	require.NoError(t, err)
	assert.Equal(t, "mail.example.co.uk", r.Domain)
	assert.Equal(t, "example.co.uk", r.OrganizationalDomain)
	assert.Equal(t, spf.StatusValid, r.SPF.Status)
}

func TestCheckCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := Check(ctx, "example.com", WithResolver(dns.MockResolver{}), WithLogger(quietLogger))
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, r)
}

func TestNewConfigDefaults(t *testing.T) {
	c := newConfig(WithLogger(nil), WithSelectors(nil), WithProviderRules(nil))

	assert.NotNil(t, c.Logger)
	assert.Equal(t, dkim.DefaultSelectors, c.Selectors)
	assert.Equal(t, provider.DefaultRules, c.ProviderRules)
	assert.IsType(t, &dns.DNSResolver{}, c.Resolver)
	assert.False(t, c.Sequential)
}
