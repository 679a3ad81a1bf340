package mailhealth

import "github.com/synqronlabs/mailhealth/utils"

var (
	// ErrInvalidDomain is returned by Check for names that cannot be queried.
	ErrInvalidDomain = utils.ErrInvalidDomain
)
