package report

import (
	"encoding/json"
	"io"

	"github.com/synqronlabs/mailhealth"
)

// Document is the machine-readable form of a report.
type Document struct {
	Domain               string        `json:"domain"`
	OrganizationalDomain string        `json:"organizational_domain"`
	MailProvider         string        `json:"mail_provider"`
	SPF                  SPFSection    `json:"spf"`
	DMARC                DMARCSection  `json:"dmarc"`
	DKIM                 DKIMSection   `json:"dkim"`
	Health               HealthSection `json:"health"`
}

type SPFSection struct {
	Status         string   `json:"status"`
	Summary        string   `json:"summary"`
	Records        []string `json:"records"`
	TrustedSenders []string `json:"trusted_senders"`
	Ignored        int      `json:"ignored_records"`
}

type DMARCSection struct {
	Status  string   `json:"status"`
	Summary string   `json:"summary"`
	Policy  string   `json:"policy"`
	Records []string `json:"records"`
	Tags    []string `json:"tags"`
	Ignored int      `json:"ignored_records"`
}

type DKIMSection struct {
	Summary   string            `json:"summary"`
	Selectors []SelectorSection `json:"selectors"`
}

type SelectorSection struct {
	Selector string `json:"selector"`
	Record   string `json:"record"`
	Display  string `json:"display"`
}

type HealthSection struct {
	Score       int               `json:"score"`
	MaxScore    int               `json:"max_score"`
	Percent     float64           `json:"percent"`
	Grade       string            `json:"grade"`
	Breakdown   []CategorySection `json:"breakdown"`
	Suggestions []string          `json:"suggestions"`
}

type CategorySection struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Weight int    `json:"weight"`
}

// NewDocument converts r. Nil slices become empty ones so JSON output
// never contains null lists.
func NewDocument(r *mailhealth.Report) Document {
	d := Document{
		Domain:               r.Domain,
		OrganizationalDomain: r.OrganizationalDomain,
		MailProvider:         r.MailProvider,
		SPF: SPFSection{
			Status:         string(r.SPF.Status),
			Summary:        r.SPF.Summary(),
			Records:        nonNil(r.SPF.Records),
			TrustedSenders: nonNil(r.SPF.TrustedSenders),
			Ignored:        r.SPF.Ignored,
		},
		DMARC: DMARCSection{
			Status:  string(r.DMARC.Status),
			Summary: r.DMARC.Summary(),
			Policy:  string(r.DMARC.Policy()),
			Records: nonNil(r.DMARC.Records),
			Tags:    nonNil(r.DMARC.Tags),
			Ignored: r.DMARC.Ignored,
		},
		DKIM: DKIMSection{
			Summary:   r.DKIM.Summary(),
			Selectors: make([]SelectorSection, 0, len(r.DKIM.Results)),
		},
		Health: HealthSection{
			Score:       r.Health.Score,
			MaxScore:    r.Health.MaxScore,
			Percent:     r.Health.Percent(),
			Grade:       r.Health.Grade(),
			Breakdown:   make([]CategorySection, 0, len(r.Health.Breakdown)),
			Suggestions: nonNil(r.Health.Suggestions),
		},
	}

	for _, s := range r.DKIM.Results {
		d.DKIM.Selectors = append(d.DKIM.Selectors, SelectorSection{
			Selector: s.Selector,
			Record:   s.Record,
			Display:  s.Display,
		})
	}
	for _, c := range r.Health.Breakdown {
		d.Health.Breakdown = append(d.Health.Breakdown, CategorySection{
			Name:   c.Name,
			Points: c.Points,
			Weight: c.Weight,
		})
	}
	return d
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// WriteJSON writes r as indented JSON followed by a newline.
func WriteJSON(w io.Writer, r *mailhealth.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(r))
}
