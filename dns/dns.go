// Package dns is the resolver gateway used by the mailhealth analyzers.
//
// Every lookup either returns records, returns ErrDNSNotFound when the name
// has no records of the requested type, or returns some other error. The
// analyzers treat ErrDNSNotFound as an empty answer and every other error as
// fatal for the run.
package dns

import (
	"context"
	"errors"
	"net"
)

// DNS lookup errors.
var (
	// ErrDNSNotFound indicates NXDOMAIN or an empty answer section.
	ErrDNSNotFound = errors.New("dns: no records found")

	// ErrDNSTimeout indicates the query timed out.
	ErrDNSTimeout = errors.New("dns: query timed out")

	// ErrDNSServFail indicates the upstream answered SERVFAIL.
	ErrDNSServFail = errors.New("dns: server failure")

	// ErrDNSRefused indicates the upstream refused the query.
	ErrDNSRefused = errors.New("dns: query refused")
)

// Result holds the records returned for a single query.
type Result[T any] struct {
	// Records in the order the upstream returned them.
	Records []T

	// Authentic is set when the upstream reported the answer as
	// DNSSEC-validated (AD bit). mailhealth does not validate DNSSEC itself.
	Authentic bool
}

// Resolver performs the TXT and MX lookups needed by the analyzers.
type Resolver interface {
	// LookupTXT retrieves TXT records for name. Multi-string TXT records are
	// joined into a single string.
	LookupTXT(ctx context.Context, name string) (Result[string], error)

	// LookupMX retrieves MX records for name in upstream order.
	LookupMX(ctx context.Context, name string) (Result[*net.MX], error)
}

// IsNotFound reports whether err means the name has no records.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDNSNotFound)
}

// IsTimeout reports whether err is a query timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrDNSTimeout)
}

// IsServFail reports whether err is a SERVFAIL answer.
func IsServFail(err error) bool {
	return errors.Is(err, ErrDNSServFail)
}

// IsTemporary reports whether retrying the query later may succeed.
func IsTemporary(err error) bool {
	return IsTimeout(err) || IsServFail(err)
}
