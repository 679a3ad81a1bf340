package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// ResolverConfig contains configuration for the DNS resolver.
type ResolverConfig struct {
	// Nameservers is a list of DNS servers to query (e.g., "8.8.8.8:53").
	// If empty, system resolvers from /etc/resolv.conf are used,
	// falling back to public DNS (8.8.8.8, 1.1.1.1).
	Nameservers []string

	// Timeout is the timeout for individual DNS queries. Default is 5 seconds.
	Timeout time.Duration

	// Retries is the number of retries for failed queries. Zero selects the
	// default of 2; NoRetries disables retrying.
	Retries int
}

// NoRetries as ResolverConfig.Retries sends every query exactly once.
const NoRetries = -1

// DNSResolver implements the Resolver interface using github.com/miekg/dns.
type DNSResolver struct {
	config ResolverConfig
	client *mdns.Client
}

// NewResolver creates a new DNS resolver. Zero fields of config are replaced
// by their defaults.
func NewResolver(config ResolverConfig) *DNSResolver {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	switch {
	case config.Retries == 0:
		config.Retries = 2
	case config.Retries < 0:
		config.Retries = 0
	}
	if len(config.Nameservers) == 0 {
		config.Nameservers = getSystemNameservers()
	} else {
		config.Nameservers = withDefaultPort(config.Nameservers)
	}

	return &DNSResolver{
		config: config,
		client: &mdns.Client{
			Timeout: config.Timeout,
		},
	}
}

// getSystemNameservers tries to get system DNS servers from resolv.conf.
func getSystemNameservers() []string {
	config, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(config.Servers) == 0 {
		// Fallback to common public DNS servers
		return []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	return withDefaultPort(config.Servers)
}

// withDefaultPort appends ":53" to servers given without a port.
func withDefaultPort(servers []string) []string {
	out := make([]string, 0, len(servers))
	for _, s := range servers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(strings.Trim(s, "[]"), "53")
		}
		out = append(out, s)
	}
	return out
}

// ensureAbsolute ensures the domain name ends with a dot (FQDN format).
func ensureAbsolute(name string) string {
	if !strings.HasSuffix(name, ".") {
		return name + "."
	}
	return name
}

// query performs a DNS query with retries across all nameservers.
func (r *DNSResolver) query(ctx context.Context, name string, qtype uint16) (*mdns.Msg, error) {
	m := new(mdns.Msg)
	m.SetQuestion(ensureAbsolute(name), qtype)
	m.RecursionDesired = true
	m.SetEdns0(4096, false)

	var lastErr error

	for i := 0; i <= r.config.Retries; i++ {
		for _, server := range r.config.Nameservers {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			resp, _, err := r.client.ExchangeContext(ctx, m, server)
			if err != nil {
				lastErr = classifyExchangeError(err)
				continue
			}

			// Truncated UDP answers are retried over TCP once.
			if resp.Truncated {
				tcp := &mdns.Client{Net: "tcp", Timeout: r.config.Timeout}
				if tresp, _, terr := tcp.ExchangeContext(ctx, m, server); terr == nil {
					resp = tresp
				}
			}

			switch resp.Rcode {
			case mdns.RcodeSuccess:
				return resp, nil
			case mdns.RcodeNameError: // NXDOMAIN
				return nil, ErrDNSNotFound
			case mdns.RcodeServerFailure:
				lastErr = ErrDNSServFail
				continue
			case mdns.RcodeRefused:
				lastErr = ErrDNSRefused
				continue
			default:
				lastErr = fmt.Errorf("dns: unexpected rcode %s", mdns.RcodeToString[resp.Rcode])
				continue
			}
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrDNSServFail
}

// classifyExchangeError maps transport errors onto package errors.
func classifyExchangeError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrDNSTimeout, err)
	}
	return fmt.Errorf("dns query failed: %w", err)
}

// LookupTXT retrieves TXT records for the given domain.
func (r *DNSResolver) LookupTXT(ctx context.Context, name string) (Result[string], error) {
	resp, err := r.query(ctx, name, mdns.TypeTXT)
	if err != nil {
		return Result[string]{}, err
	}

	var records []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*mdns.TXT); ok {
			// TXT records may be split into multiple character strings, join them
			records = append(records, strings.Join(txt.Txt, ""))
		}
	}

	if len(records) == 0 {
		return Result[string]{Authentic: resp.AuthenticatedData}, ErrDNSNotFound
	}

	return Result[string]{Records: records, Authentic: resp.AuthenticatedData}, nil
}

// LookupMX retrieves MX records for the given domain.
func (r *DNSResolver) LookupMX(ctx context.Context, name string) (Result[*net.MX], error) {
	resp, err := r.query(ctx, name, mdns.TypeMX)
	if err != nil {
		return Result[*net.MX]{}, err
	}

	var records []*net.MX
	for _, rr := range resp.Answer {
		if mx, ok := rr.(*mdns.MX); ok {
			records = append(records, &net.MX{
				Host: mx.Mx,
				Pref: mx.Preference,
			})
		}
	}

	if len(records) == 0 {
		return Result[*net.MX]{Authentic: resp.AuthenticatedData}, ErrDNSNotFound
	}

	return Result[*net.MX]{Records: records, Authentic: resp.AuthenticatedData}, nil
}

// Config returns the resolver's current configuration.
func (r *DNSResolver) Config() ResolverConfig {
	return r.config
}
