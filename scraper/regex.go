package scraper

import (
	"regexp"

	"dropwatch/models"
)

var (
	// currency-prefixed digit groups, 3-7 digits once commas are stripped
	rupeePrefixed = regexp.MustCompile(`(?:₹|Rs\.?\s?|INR\s?)\s*([\d,]{3,9})`)

	// bare digit runs, 4-7 digits; deliberately permissive and the primary
	// source of false positives (SKUs, review counts), so it stays last
	bareDigits = regexp.MustCompile(`\b(\d{4,7})\b`)

	// single last-resort match when both passes fail
	lastResort = regexp.MustCompile(`(?:₹|INR)\s*([\d,]+)`)
)

// ExtractCurrencyPrefixed scans raw text for currency-marked digit groups.
func ExtractCurrencyPrefixed(text string) []models.Candidate {
	var candidates []models.Candidate
	for _, m := range rupeePrefixed.FindAllStringSubmatch(text, -1) {
		if n, ok := onlyDigits(m[1]); ok && digitLen(n) >= 3 && digitLen(n) <= 7 {
			candidates = append(candidates, models.Candidate{
				Value:      n,
				Provenance: models.ProvenanceRegex,
			})
		}
	}
	return candidates
}

// ExtractBareDigits scans raw text for any 4-7 digit run.
func ExtractBareDigits(text string) []models.Candidate {
	var candidates []models.Candidate
	for _, m := range bareDigits.FindAllStringSubmatch(text, -1) {
		if n, ok := onlyDigits(m[1]); ok {
			candidates = append(candidates, models.Candidate{
				Value:      n,
				Provenance: models.ProvenanceRegex,
			})
		}
	}
	return candidates
}

// LastResortMatch tries one final currency-or-INR-prefixed match and accepts
// it only when in-bounds.
func LastResortMatch(text string, bounds models.Bounds) (models.Candidate, bool) {
	m := lastResort.FindStringSubmatch(text)
	if m == nil {
		return models.Candidate{}, false
	}
	n, ok := onlyDigits(m[1])
	if !ok || !bounds.Contains(n) {
		return models.Candidate{}, false
	}
	return models.Candidate{Value: n, Provenance: models.ProvenanceRegex}, true
}

func digitLen(n int) int {
	l := 1
	for n >= 10 {
		n /= 10
		l++
	}
	return l
}
