package scraper

import (
	"dropwatch/models"

	"github.com/PuerkitoBio/goquery"
)

// Engine runs the staged price selection over an already-fetched document.
// It is pure and synchronous; fetching, pacing and persistence live with the
// caller.
type Engine struct {
	bounds models.Bounds
}

// NewEngine builds an engine with the configured plausible price range.
func NewEngine(bounds models.Bounds) *Engine {
	return &Engine{bounds: bounds}
}

// Bounds returns the engine's configured price range.
func (e *Engine) Bounds() models.Bounds {
	return e.bounds
}

// SelectPrice picks the price from a fetched page. Stages run strictly in
// order and the first stage with a non-empty filtered set wins:
//
//  1. site-profile selector rules
//  2. generic-profile rules, merged with the stage-1 leftovers
//  3. currency-prefixed regex over the raw text, then bare digit groups
//  4. a single last-resort currency match
//
// Within the winning stage the smallest in-bounds value is chosen: pages
// usually show a strikethrough MRP above the actual sale price, so the
// lowest plausible number is taken to be the sale price. That heuristic can
// misfire on pages listing cheaper accessories; it is kept deliberately.
func (e *Engine) SelectPrice(doc *goquery.Document, rawText string, site models.Site) (int, error) {
	candidates := ExtractStructured(doc, ProfileFor(site))
	if values := FilterCandidates(candidates, e.bounds); len(values) > 0 {
		return values[0], nil
	}

	// widen the net: generic rules join, they do not replace
	if site != models.SiteUnknown {
		candidates = append(candidates, ExtractStructured(doc, defaultProfile)...)
		if values := FilterCandidates(candidates, e.bounds); len(values) > 0 {
			return values[0], nil
		}
	}

	if values := FilterCandidates(ExtractCurrencyPrefixed(rawText), e.bounds); len(values) > 0 {
		return values[0], nil
	}

	if values := FilterCandidates(ExtractBareDigits(rawText), e.bounds); len(values) > 0 {
		return values[0], nil
	}

	if c, ok := LastResortMatch(rawText, e.bounds); ok {
		return c.Value, nil
	}

	return 0, ErrNoCandidate
}
