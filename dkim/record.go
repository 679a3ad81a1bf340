package dkim

import (
	"strings"
)

// Display limits for TrimRecord.
const (
	maxKeyLength  = 20 // p= values longer than this are shortened
	keyEdgeLength = 8  // characters kept at each end of a shortened key
	maxSegments   = 8  // records with more segments are collapsed
	edgeSegments  = 4  // segments kept at each end of a collapsed record
)

// TrimRecord shortens a DKIM TXT record for display.
//
// The record is split on ';'. A segment whose trimmed text starts with "p="
// and whose key is longer than 20 characters is replaced by
// " p=<first 8>...<last 8>". Other segments pass through unchanged,
// including surrounding whitespace. If more than 8 segments remain, only the
// first and last 4 are shown around "; ... ;".
func TrimRecord(record string) string {
	parts := strings.Split(record, ";")
	for i, part := range parts {
		parts[i] = trimKey(part)
	}

	if len(parts) <= maxSegments {
		return strings.Join(parts, ";")
	}

	head := strings.Join(parts[:edgeSegments], ";")
	tail := strings.Join(parts[len(parts)-edgeSegments:], ";")
	return head + "; ... ;" + tail
}

// trimKey shortens the public key of a "p=" segment.
func trimKey(segment string) string {
	trimmed := strings.TrimSpace(segment)
	key, ok := strings.CutPrefix(trimmed, "p=")
	if !ok || len(key) <= maxKeyLength {
		return segment
	}
	return " p=" + key[:keyEdgeLength] + "..." + key[len(key)-keyEdgeLength:]
}
