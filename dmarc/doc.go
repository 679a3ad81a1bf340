// Package dmarc inspects the Domain-based Message Authentication, Reporting,
// and Conformance (DMARC) record a domain publishes under "_dmarc.<domain>".
//
// Only the published record is examined; no alignment checks are made
// against real mail traffic. A domain must publish exactly one record
// starting with "v=DMARC1". Publishing two or more is reported as
// StatusMultipleInvalid, since receivers then treat the domain as having no
// DMARC policy at all.
//
// # Basic Usage
//
//	finding, err := dmarc.Analyze(ctx, resolver, "example.com")
//	if err != nil {
//	    // DNS failure other than "no records"
//	}
//	if finding.Status == dmarc.StatusValid {
//	    fmt.Println("policy:", finding.Policy())
//	}
//
// # References
//
//   - RFC 7489: Domain-based Message Authentication, Reporting, and Conformance (DMARC)
package dmarc
