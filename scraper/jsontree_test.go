package scraper

import (
	"encoding/json"
	"testing"

	"dropwatch/models"
)

var testBounds = models.Bounds{Min: 1000, Max: 200000}

func decode(t *testing.T, raw string) interface{} {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return v
}

func TestFindPriceInJSONWhitelistWins(t *testing.T) {
	t.Parallel()

	// sellingPrice is whitelisted, mrp is not
	v := decode(t, `{"mrp": 59999, "sellingPrice": 41999}`)

	cand, ok := FindPriceInJSON(v, testBounds)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if cand.Value != 41999 {
		t.Fatalf("expected 41999, got %d", cand.Value)
	}
	if cand.Provenance != models.ProvenanceJSON {
		t.Fatalf("unexpected provenance %q", cand.Provenance)
	}
}

func TestFindPriceInJSONNestedAndArrays(t *testing.T) {
	t.Parallel()

	v := decode(t, `{
		"RESPONSE": {
			"pageData": [
				{"widget": {"data": {"pricing": {"finalPrice": {"value": "₹47,999"}}}}}
			]
		}
	}`)

	cand, ok := FindPriceInJSON(v, testBounds)
	if !ok || cand.Value != 47999 {
		t.Fatalf("expected 47999, got %v ok=%v", cand, ok)
	}
}

func TestFindPriceInJSONRespectsBounds(t *testing.T) {
	t.Parallel()

	// first whitelisted hit is out of bounds; the walk keeps going
	v := decode(t, `{"a": {"price": 5}, "b": {"price": 52999}}`)

	cand, ok := FindPriceInJSON(v, testBounds)
	if !ok || cand.Value != 52999 {
		t.Fatalf("expected 52999, got %v ok=%v", cand, ok)
	}
}

func TestFindPriceInJSONCurrencyStringFallback(t *testing.T) {
	t.Parallel()

	v := decode(t, `{"display": "Buy now at ₹51,999 only", "mrp": 59999}`)

	cand, ok := FindPriceInJSON(v, testBounds)
	if !ok || cand.Value != 51999 {
		t.Fatalf("expected currency fallback 51999, got %v ok=%v", cand, ok)
	}
}

func TestFindPriceInJSONNothingUsable(t *testing.T) {
	t.Parallel()

	v := decode(t, `{"title": "iPhone 15", "rating": 4.6, "reviews": 120}`)

	if _, ok := FindPriceInJSON(v, testBounds); ok {
		t.Fatal("expected no candidate")
	}
}

func TestFindPriceInJSONDepthBudget(t *testing.T) {
	t.Parallel()

	// build a tree deeper than the walk allows, with the price at the bottom
	leaf := map[string]interface{}{"price": float64(52999)}
	node := interface{}(leaf)
	for i := 0; i < maxJSONDepth+10; i++ {
		node = map[string]interface{}{"wrap": node}
	}

	if _, ok := FindPriceInJSON(node, testBounds); ok {
		t.Fatal("walk should stop at the depth budget")
	}

	// shallow version still resolves
	if cand, ok := FindPriceInJSON(leaf, testBounds); !ok || cand.Value != 52999 {
		t.Fatalf("shallow walk failed: %v ok=%v", cand, ok)
	}
}
