package scraper

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"dropwatch/models"
)

// Bounds on the JSON walk. API payloads are trees by construction, but an
// adversarial response could still be arbitrarily deep or wide.
const (
	maxJSONDepth = 64
	maxJSONNodes = 50000
)

// priceKeys is the whitelist of object keys that may carry the item price.
// Matching is exact on the lower-cased key; "mrp" and friends stay out.
var priceKeys = map[string]bool{
	"price":        true,
	"finalprice":   true,
	"sellingprice": true,
	"specialprice": true,
	"currentprice": true,
	"sp":           true,
}

var rupeeInString = regexp.MustCompile(`(?:₹|Rs\.?|INR)\s*([\d,]+)`)

type jsonWalker struct {
	bounds   models.Bounds
	nodes    int
	fallback int
	hasFB    bool
}

// FindPriceInJSON walks a decoded JSON tree depth-first and returns the
// first whitelisted, in-bounds price field. Object keys are visited in
// sorted order so the result is deterministic regardless of map iteration.
// Strings holding a currency-prefixed amount under any key are remembered
// as a fallback used only when no whitelisted field qualifies.
func FindPriceInJSON(node interface{}, bounds models.Bounds) (models.Candidate, bool) {
	w := &jsonWalker{bounds: bounds}
	if v, ok := w.walk(node, 0); ok {
		return models.Candidate{Value: v, Provenance: models.ProvenanceJSON}, true
	}
	if w.hasFB {
		return models.Candidate{Value: w.fallback, Provenance: models.ProvenanceJSON}, true
	}
	return models.Candidate{}, false
}

func (w *jsonWalker) walk(node interface{}, depth int) (int, bool) {
	if depth > maxJSONDepth {
		return 0, false
	}
	w.nodes++
	if w.nodes > maxJSONNodes {
		return 0, false
	}

	switch v := node.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if priceKeys[strings.ToLower(k)] {
				if n, ok := w.coerce(v[k]); ok {
					return n, true
				}
			}
		}
		for _, k := range keys {
			if n, ok := w.walk(v[k], depth+1); ok {
				return n, true
			}
		}

	case []interface{}:
		for _, item := range v {
			if n, ok := w.walk(item, depth+1); ok {
				return n, true
			}
		}

	case string:
		w.rememberCurrencyFallback(v)
	}

	return 0, false
}

// coerce turns a scalar field value into an in-bounds price, if it is one.
func (w *jsonWalker) coerce(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		n := int(v)
		if w.bounds.Contains(n) {
			return n, true
		}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			n := int(f)
			if w.bounds.Contains(n) {
				return n, true
			}
		}
	case string:
		if n, ok := onlyDigits(v); ok && w.bounds.Contains(n) {
			return n, true
		}
	}
	return 0, false
}

func (w *jsonWalker) rememberCurrencyFallback(s string) {
	if w.hasFB {
		return
	}
	m := rupeeInString.FindStringSubmatch(s)
	if m == nil {
		return
	}
	if n, ok := onlyDigits(m[1]); ok && w.bounds.Contains(n) {
		w.fallback = n
		w.hasFB = true
	}
}
