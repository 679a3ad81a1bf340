// Package spf inspects the Sender Policy Framework (SPF) records a domain
// publishes in DNS.
//
// It does not evaluate SPF policy against a client IP. Analyze reports
// whether the domain publishes SPF at all, the raw record text and the
// mechanisms that name trusted senders, together with the terminal "all"
// qualifier:
//
//	finding, err := spf.Analyze(ctx, resolver, "example.com")
//	if err != nil {
//	    // DNS failure other than "no records"
//	}
//	fmt.Println(finding.Summary(), finding.TrustedSenders)
//
// References:
//   - RFC 7208: Sender Policy Framework (SPF)
package spf
