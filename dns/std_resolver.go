package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"
)

// StdResolver implements the Resolver interface on top of net.Resolver. It
// honours the host's resolver setup (hosts file, search list, stub resolvers)
// unless nameservers are configured explicitly.
type StdResolver struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// NewStdResolver creates a resolver backed by the standard library.
//
// With no nameservers in config the system configuration is used as is.
// Otherwise queries are sent to the listed servers in rotation. Timeout, when
// set, bounds each lookup. Retries is ignored; net.Resolver applies the
// attempts configured in resolv.conf.
func NewStdResolver(config ResolverConfig) *StdResolver {
	r := &StdResolver{
		resolver: net.DefaultResolver,
		timeout:  config.Timeout,
	}
	if len(config.Nameservers) == 0 {
		return r
	}

	servers := withDefaultPort(config.Nameservers)
	dialer := &net.Dialer{Timeout: config.Timeout}
	var next atomic.Uint32
	r.resolver = &net.Resolver{
		PreferGo:     true,
		StrictErrors: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			server := servers[int(next.Add(1)-1)%len(servers)]
			return dialer.DialContext(ctx, network, server)
		},
	}
	return r
}

func (r *StdResolver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// LookupTXT retrieves TXT records for name.
func (r *StdResolver) LookupTXT(ctx context.Context, name string) (Result[string], error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	records, err := r.resolver.LookupTXT(ctx, strings.TrimSuffix(name, "."))
	if err != nil {
		return Result[string]{}, convertError(err)
	}
	if len(records) == 0 {
		return Result[string]{}, ErrDNSNotFound
	}
	return Result[string]{Records: records}, nil
}

// LookupMX retrieves MX records for name.
func (r *StdResolver) LookupMX(ctx context.Context, name string) (Result[*net.MX], error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	records, err := r.resolver.LookupMX(ctx, strings.TrimSuffix(name, "."))
	if err != nil {
		return Result[*net.MX]{}, convertError(err)
	}
	if len(records) == 0 {
		return Result[*net.MX]{}, ErrDNSNotFound
	}
	return Result[*net.MX]{Records: records}, nil
}

// convertError maps net.DNSError onto the package's sentinel errors.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return ErrDNSNotFound
		case dnsErr.IsTimeout:
			return fmt.Errorf("%w: %v", ErrDNSTimeout, err)
		case dnsErr.IsTemporary:
			return fmt.Errorf("%w: %v", ErrDNSServFail, err)
		}
	}

	return fmt.Errorf("dns lookup failed: %w", err)
}
