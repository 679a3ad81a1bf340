package dns

import (
	"context"
	"net"
	"slices"
	"sync"
)

// MockResolver is a Resolver used for testing.
// Set DNS records in the fields, which map FQDNs (with trailing dot) to values.
type MockResolver struct {
	TXT map[string][]string
	MX  map[string][]*net.MX

	// Fail contains records that will return a temporary error (SERVFAIL).
	// Format: "type name", e.g. "txt example.com." where type is lowercase.
	Fail []string

	// AllAuthentic sets the default value for Authentic in responses.
	AllAuthentic bool

	// queries records every request as "type name" when non-nil.
	queries *queryLog
}

var _ Resolver = MockResolver{}

type queryLog struct {
	mu   sync.Mutex
	reqs []string
}

// Recording returns a copy of r that remembers every query it answers.
// Queries are safe to issue from multiple goroutines.
func (r MockResolver) Recording() MockResolver {
	r.queries = &queryLog{}
	return r
}

// Queries returns the requests seen by a recording resolver, in arrival order.
func (r MockResolver) Queries() []string {
	if r.queries == nil {
		return nil
	}
	r.queries.mu.Lock()
	defer r.queries.mu.Unlock()
	return slices.Clone(r.queries.reqs)
}

// mockReq represents a mock DNS request.
type mockReq struct {
	Type string // E.g. "txt", "mx"
	Name string // FQDN with trailing dot
}

func (mr mockReq) String() string {
	return mr.Type + " " + mr.Name
}

// ensureFQDN ensures the name ends with a dot.
func ensureFQDN(name string) string {
	if len(name) == 0 || name[len(name)-1] != '.' {
		return name + "."
	}
	return name
}

// check records the request and reports configured failures.
func (r MockResolver) check(ctx context.Context, mr mockReq) error {
	if r.queries != nil {
		r.queries.mu.Lock()
		r.queries.reqs = append(r.queries.reqs, mr.String())
		r.queries.mu.Unlock()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if slices.Contains(r.Fail, mr.String()) {
		return ErrDNSServFail
	}
	return nil
}

// LookupTXT returns TXT records for the given domain.
func (r MockResolver) LookupTXT(ctx context.Context, name string) (Result[string], error) {
	fqdn := ensureFQDN(name)
	result := Result[string]{Authentic: r.AllAuthentic}

	if err := r.check(ctx, mockReq{"txt", fqdn}); err != nil {
		return result, err
	}

	records, ok := r.TXT[fqdn]
	if !ok || len(records) == 0 {
		return result, ErrDNSNotFound
	}

	result.Records = records
	return result, nil
}

// LookupMX returns MX records for the given domain.
func (r MockResolver) LookupMX(ctx context.Context, name string) (Result[*net.MX], error) {
	fqdn := ensureFQDN(name)
	result := Result[*net.MX]{Authentic: r.AllAuthentic}

	if err := r.check(ctx, mockReq{"mx", fqdn}); err != nil {
		return result, err
	}

	records, ok := r.MX[fqdn]
	if !ok || len(records) == 0 {
		return result, ErrDNSNotFound
	}

	result.Records = records
	return result, nil
}
