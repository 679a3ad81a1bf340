package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mitchellh/colorstring"

	"github.com/synqronlabs/mailhealth"
	"github.com/synqronlabs/mailhealth/dmarc"
	"github.com/synqronlabs/mailhealth/score"
	"github.com/synqronlabs/mailhealth/spf"
)

const none = "None"

// WriteTable prints r as a two-column table:
//
//	Domain Health Check  example.com
//	Mail Provider        Google
//	SPF Check            Valid SPF records
//	...
//
// List rows print their first entry next to the label and the rest on
// continuation rows, or "None" when empty. Colours only touch the value
// column so alignment is unaffected.
func WriteTable(w io.Writer, r *mailhealth.Report, color bool) error {
	c := colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !color,
		Reset:   true,
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	row := func(label, value string) {
		fmt.Fprintf(tw, "%s\t%s\n", label, value)
	}
	list := func(label string, values []string) {
		if len(values) == 0 {
			row(label, none)
			return
		}
		row(label, values[0])
		for _, v := range values[1:] {
			row("", v)
		}
	}

	row("Domain Health Check", c.Color("[bold]"+r.Domain))
	row("Mail Provider", r.MailProvider)
	row("SPF Check", c.Color(spfColor(r.SPF)+r.SPF.Summary()))
	row("DMARC Check", c.Color(dmarcColor(r.DMARC)+r.DMARC.Summary()))
	row("DKIM Check", c.Color(presenceColor(r.DKIM.Found())+r.DKIM.Summary()))
	list("SPF Trusted Senders", r.SPF.TrustedSenders)
	list("DMARC Tags", r.DMARC.Tags)
	list("DKIM Records", r.DKIM.Displays())

	h := r.Health
	row("Health Score", c.Color(gradeColor(h.Grade())+fmt.Sprintf("%d/%d (%.0f%%)", h.Score, h.MaxScore, h.Percent())))
	for _, cat := range h.Breakdown {
		row("  "+cat.Name, fmt.Sprintf("%d/%d", cat.Points, cat.Weight))
	}
	list("Suggestions", h.Suggestions)

	return tw.Flush()
}

func spfColor(f spf.Finding) string {
	switch {
	case f.Status == spf.StatusValid && f.HardFail():
		return "[green]"
	case f.Status == spf.StatusValid:
		return "[yellow]"
	default:
		return "[red]"
	}
}

func dmarcColor(f dmarc.Finding) string {
	if f.Status != dmarc.StatusValid {
		return "[red]"
	}
	if f.Policy() == dmarc.PolicyReject {
		return "[green]"
	}
	return "[yellow]"
}

func presenceColor(ok bool) string {
	if ok {
		return "[green]"
	}
	return "[red]"
}

func gradeColor(grade string) string {
	switch grade {
	case score.GradeGood:
		return "[green]"
	case score.GradeFair:
		return "[yellow]"
	default:
		return "[red]"
	}
}
