package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dropwatch/models"
)

// ExtractStructured evaluates every rule of the profile against the parsed
// document and returns one candidate per successful read. Rules are a
// fan-out, not a short-circuit: pages frequently carry both a sale price and
// a strikethrough MRP, and the filter/selector decide between them later.
func ExtractStructured(doc *goquery.Document, profile Profile) []models.Candidate {
	if doc == nil {
		return nil
	}

	var candidates []models.Candidate
	for _, rule := range profile {
		sel := doc.Find(rule.Selector).First()
		if sel.Length() == 0 {
			continue
		}

		var raw string
		if rule.Attr != "" {
			var ok bool
			raw, ok = sel.Attr(rule.Attr)
			if !ok {
				continue
			}
		} else {
			raw = sel.Text()
		}

		raw = strings.TrimSpace(raw)
		if raw == "" || isInstallmentText(raw) {
			continue
		}

		if n, ok := onlyDigits(raw); ok {
			candidates = append(candidates, models.Candidate{
				Value:      n,
				Provenance: models.ProvenanceSelector,
			})
		}
	}

	return candidates
}
