package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonDigits = regexp.MustCompile(`[^\d]`)
	moWord    = regexp.MustCompile(`(?i)\bmo\b`)
)

// onlyDigits reduces a raw text value to its digit characters and parses the
// result as an unsigned integer. Empty or absurdly long results are dropped.
func onlyDigits(s string) (int, bool) {
	num := nonDigits.ReplaceAllString(s, "")
	if num == "" || len(num) > 9 {
		return 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, false
	}
	return n, true
}

// isInstallmentText reports whether a raw value looks like a monthly
// installment (EMI) amount rather than a one-time price. Such values must
// never become candidates: ₹3,999/month is in-bounds but wrong.
func isInstallmentText(s string) bool {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "/") {
		return true
	}
	if strings.Contains(lower, "emi") || strings.Contains(lower, "per month") {
		return true
	}
	return moWord.MatchString(lower)
}
