package spf

import (
	"strings"

	"github.com/synqronlabs/mailhealth/utils"
)

const versionPrefix = "v=spf1"

// Terminal "all" terms reported as trusted senders.
const (
	QualifierFail     = "-all"
	QualifierSoftfail = "~all"
	QualifierNeutral  = "?all"
)

// senderPrefixes are the mechanisms that name hosts allowed to send mail.
var senderPrefixes = []string{"ip4:", "ip6:", "include:", "a:", "mx:"}

// TrustedSenders tokenizes one SPF record on whitespace and returns the
// tokens naming trusted senders, in order. The version term and every other
// mechanism or modifier (ptr, exists:, redirect=, bare "a" or "mx", "+all")
// are dropped.
func TrustedSenders(record string) []string {
	var senders []string
	for _, tok := range strings.Fields(record) {
		if IsTrustedSender(tok) {
			senders = append(senders, tok)
		}
	}
	return senders
}

// IsTrustedSender reports whether a single SPF token is kept as a trusted sender.
func IsTrustedSender(tok string) bool {
	switch tok {
	case QualifierFail, QualifierSoftfail, QualifierNeutral:
		return true
	}
	return utils.HasAnyPrefix(tok, senderPrefixes...)
}
