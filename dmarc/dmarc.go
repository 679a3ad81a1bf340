package dmarc

import (
	"errors"
	"strings"
)

// DMARC lookup errors.
var (
	// ErrDNS indicates a DNS lookup error occurred.
	ErrDNS = errors.New("dmarc: DNS lookup error")
)

// Status classifies the DMARC records found for a domain.
type Status string

const (
	// StatusAbsent indicates no TXT record at _dmarc.<domain> starts with "v=DMARC1".
	StatusAbsent Status = "absent"

	// StatusValid indicates exactly one DMARC record was found.
	StatusValid Status = "valid"

	// StatusMultipleInvalid indicates two or more DMARC records were found.
	// Per RFC 7489 this must be treated as if the domain does not implement DMARC.
	StatusMultipleInvalid Status = "multiple"
)

// Policy is the requested handling of messages that fail DMARC.
type Policy string

const (
	// PolicyEmpty means no p= tag was found.
	PolicyEmpty Policy = ""

	// PolicyNone requests no specific action be taken for failing messages.
	PolicyNone Policy = "none"

	// PolicyQuarantine requests that failing messages be treated as suspicious.
	PolicyQuarantine Policy = "quarantine"

	// PolicyReject requests that failing messages be rejected.
	PolicyReject Policy = "reject"
)

// Finding is the result of analyzing a domain's DMARC record.
type Finding struct {
	Status Status

	// Records holds the raw text of every TXT answer starting with "v=DMARC1".
	Records []string

	// Tags holds the trimmed "tag=value" segments of the accepted record, in
	// record order. With multiple records, the tags of all of them are kept.
	Tags []string

	// Ignored counts TXT answers at _dmarc.<domain> that are not DMARC records.
	Ignored int
}

// Summary returns the one-line status text shown in reports.
func (f Finding) Summary() string {
	switch f.Status {
	case StatusValid:
		return "Valid DMARC record found"
	case StatusMultipleInvalid:
		return "Multiple DMARC records found (invalid)"
	}
	if f.Ignored > 0 {
		return "No valid DMARC records found"
	}
	return "No DMARC record found"
}

// Policy returns the value of the first p= tag, lower-cased.
// Unrecognized values are returned as-is.
func (f Finding) Policy() Policy {
	for _, tag := range f.Tags {
		name, value, ok := strings.Cut(tag, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "p") {
			continue
		}
		return Policy(strings.ToLower(strings.TrimSpace(value)))
	}
	return PolicyEmpty
}
