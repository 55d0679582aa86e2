package scraper

import (
	"testing"

	"dropwatch/models"
)

func TestExtractCurrencyPrefixed(t *testing.T) {
	t.Parallel()

	text := `M.R.P.: ₹89,999 Deal Price: ₹45,999 You save ₹44,000 Rs. 46,999 at partner stores`
	candidates := ExtractCurrencyPrefixed(text)

	want := map[int]bool{89999: true, 45999: true, 44000: true, 46999: true}
	if len(candidates) != len(want) {
		t.Fatalf("expected %d candidates, got %v", len(want), candidates)
	}
	for _, c := range candidates {
		if !want[c.Value] {
			t.Fatalf("unexpected candidate %d", c.Value)
		}
		if c.Provenance != models.ProvenanceRegex {
			t.Fatalf("unexpected provenance %q", c.Provenance)
		}
	}
}

func TestExtractCurrencyPrefixedIgnoresShortAndLongRuns(t *testing.T) {
	t.Parallel()

	// 2 digits is noise, 8 digits is absurd
	candidates := ExtractCurrencyPrefixed("₹99 cashback, order id ₹12345678")
	for _, c := range candidates {
		if c.Value == 99 || c.Value == 12345678 {
			t.Fatalf("out-of-length candidate leaked: %d", c.Value)
		}
	}
}

func TestExtractBareDigits(t *testing.T) {
	t.Parallel()

	candidates := ExtractBareDigits("model X1234 listed at 52999 with 120 reviews")

	want := map[int]bool{1234: false, 52999: false}
	for _, c := range candidates {
		if _, ok := want[c.Value]; !ok {
			t.Fatalf("unexpected candidate %d", c.Value)
		}
		want[c.Value] = true
	}
	if !want[52999] {
		t.Fatal("bare digit run 52999 missing")
	}
}

func TestLastResortMatch(t *testing.T) {
	t.Parallel()

	bounds := models.Bounds{Min: 1000, Max: 200000}

	if c, ok := LastResortMatch("INR 52,999 only today", bounds); !ok || c.Value != 52999 {
		t.Fatalf("expected 52999, got %v ok=%v", c, ok)
	}

	if _, ok := LastResortMatch("INR 999999999", bounds); ok {
		t.Fatal("out-of-bounds last resort must be rejected")
	}

	if _, ok := LastResortMatch("no currency here", bounds); ok {
		t.Fatal("expected no match")
	}
}
