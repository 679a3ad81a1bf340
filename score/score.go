// Package score combines SPF, DMARC and DKIM findings into a weighted
// health score out of 100 with remediation suggestions.
//
// Each category has a fixed weight and a small set of possible point values:
//
//	SPF    33  {0, 25, 33}
//	DMARC  34  {0, 20, 25, 34}
//	DKIM   33  {0, 33}
//
// The breakdown and the suggestions always follow the category order above.
package score

import (
	"github.com/synqronlabs/mailhealth/dkim"
	"github.com/synqronlabs/mailhealth/dmarc"
	"github.com/synqronlabs/mailhealth/spf"
	"github.com/synqronlabs/mailhealth/utils"
)

// MaxScore is the score of a domain with full marks in every category.
const MaxScore = 100

// Category names as they appear in the breakdown.
const (
	CategorySPF   = "SPF"
	CategoryDMARC = "DMARC"
	CategoryDKIM  = "DKIM"
)

// Category weights.
const (
	WeightSPF   = 33
	WeightDMARC = 34
	WeightDKIM  = 33
)

// Remediation suggestions.
const (
	SuggestSPFHardFail    = "Consider adding a hard fail (-all) to your SPF record for stronger protection."
	SuggestSPFImplement   = "Implement a valid SPF record to improve email authentication."
	SuggestDMARCReject    = "Consider upgrading your DMARC policy to 'p=reject' for maximum security."
	SuggestDMARCStrength  = "Strengthen your DMARC policy by setting it to 'p=quarantine' or 'p=reject'."
	SuggestDMARCImplement = "Implement a DMARC record to enhance email security and reduce the risk of email spoofing."
	SuggestDKIMSetup      = "Set up DKIM for your domain to improve email authentication and deliverability."
)

// Grades returned by HealthScore.Grade.
const (
	GradeGood = "good"
	GradeFair = "fair"
	GradePoor = "poor"
)

// Category is one line of the score breakdown.
type Category struct {
	Name   string
	Points int
	Weight int
}

// HealthScore is the weighted result for a domain.
type HealthScore struct {
	Score       int
	MaxScore    int
	Breakdown   []Category
	Suggestions []string
}

// Percent returns the score as a percentage of MaxScore.
func (h HealthScore) Percent() float64 {
	if h.MaxScore == 0 {
		return 0
	}
	return float64(h.Score) * 100 / float64(h.MaxScore)
}

// Grade buckets the score for presentation.
func (h HealthScore) Grade() string {
	switch p := h.Percent(); {
	case p >= 90:
		return GradeGood
	case p >= 50:
		return GradeFair
	default:
		return GradePoor
	}
}

// Points returns the points awarded to the named category, or 0.
func (h HealthScore) Points(name string) int {
	for _, c := range h.Breakdown {
		if c.Name == name {
			return c.Points
		}
	}
	return 0
}

// Calculate scores the findings of one domain.
func Calculate(spfFinding spf.Finding, dmarcFinding dmarc.Finding, dkimFinding dkim.Finding) HealthScore {
	h := HealthScore{MaxScore: MaxScore}

	points, suggestion := scoreSPF(spfFinding)
	h.add(CategorySPF, points, WeightSPF, suggestion)

	points, suggestion = scoreDMARC(dmarcFinding)
	h.add(CategoryDMARC, points, WeightDMARC, suggestion)

	points, suggestion = scoreDKIM(dkimFinding)
	h.add(CategoryDKIM, points, WeightDKIM, suggestion)

	return h
}

func (h *HealthScore) add(name string, points, weight int, suggestion string) {
	h.Score += points
	h.Breakdown = append(h.Breakdown, Category{Name: name, Points: points, Weight: weight})
	if suggestion != "" {
		h.Suggestions = append(h.Suggestions, suggestion)
	}
}

func scoreSPF(f spf.Finding) (int, string) {
	switch {
	case f.Status != spf.StatusValid:
		return 0, SuggestSPFImplement
	case f.HardFail():
		return WeightSPF, ""
	default:
		return 25, SuggestSPFHardFail
	}
}

// scoreDMARC matches tags by substring, so "sp=reject" also counts as a
// reject policy.
func scoreDMARC(f dmarc.Finding) (int, string) {
	switch {
	case f.Status != dmarc.StatusValid:
		return 0, SuggestDMARCImplement
	case utils.AnyContains(f.Tags, "p=reject"):
		return WeightDMARC, ""
	case utils.AnyContains(f.Tags, "p=quarantine"):
		return 25, SuggestDMARCReject
	default:
		return 20, SuggestDMARCStrength
	}
}

func scoreDKIM(f dkim.Finding) (int, string) {
	if f.Found() {
		return WeightDKIM, ""
	}
	return 0, SuggestDKIMSetup
}
