package utils

import (
	"crypto/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

// ContainsNonASCII checks if a string contains any non-ASCII characters (bytes > 127).
func ContainsNonASCII(s string) bool {
	for _, v := range s {
		if v >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

// GenerateID creates a unique, time-sortable identifier for a run.
func GenerateID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// SplitTags splits a tag-list record ("a=1; b=2;") on ';', trims each
// segment and drops empty ones.
func SplitTags(record string) []string {
	var tags []string
	for _, part := range strings.Split(record, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// HasAnyPrefix reports whether s starts with one of the prefixes.
func HasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// AnyContains reports whether any element of list contains substr.
func AnyContains(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
