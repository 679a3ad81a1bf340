package utils

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// ErrInvalidDomain is returned by NormalizeDomain for names that cannot be queried.
var ErrInvalidDomain = errors.New("invalid domain name")

const (
	maxDomainLength = 253
	maxLabelLength  = 63
)

var lookupProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
)

// NormalizeDomain validates a user-supplied domain and returns the form used
// to build query names. Surrounding whitespace and a trailing root dot are
// removed. ASCII names keep their case; internationalized names are converted
// to their punycode form.
func NormalizeDomain(domain string) (string, error) {
	d := strings.TrimSuffix(strings.TrimSpace(domain), ".")
	if d == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDomain)
	}

	if ContainsNonASCII(d) {
		ascii, err := lookupProfile.ToASCII(d)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidDomain, domain, err)
		}
		d = ascii
	}

	if len(d) > maxDomainLength {
		return "", fmt.Errorf("%w: %q longer than %d characters", ErrInvalidDomain, domain, maxDomainLength)
	}

	labels := strings.Split(d, ".")
	if len(labels) < 2 {
		return "", fmt.Errorf("%w: %q is a single label", ErrInvalidDomain, domain)
	}
	for _, label := range labels {
		if err := validateLabel(label); err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidDomain, domain, err)
		}
	}

	return d, nil
}

func validateLabel(label string) error {
	if label == "" {
		return errors.New("empty label")
	}
	if len(label) > maxLabelLength {
		return fmt.Errorf("label %q longer than %d characters", label, maxLabelLength)
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return fmt.Errorf("label %q starts or ends with a hyphen", label)
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return fmt.Errorf("label %q contains %q", label, c)
		}
	}
	return nil
}

// OrganizationalDomain returns the organizational domain for the given domain.
//
// The organizational domain is the domain directly under the public suffix.
// For example:
//   - example.com -> example.com
//   - sub.example.com -> example.com
//   - sub.example.co.uk -> example.co.uk
func OrganizationalDomain(domain string) string {
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")

	if domain == "" {
		return ""
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		// localhost, bare public suffixes and the like
		return domain
	}

	return etld1
}
