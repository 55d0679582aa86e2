package fetcher

import (
	"regexp"
	"strings"
)

// BotWallDetector recognizes block pages, CAPTCHAs and rate-limit shells so
// a bot wall is not mistaken for a product page with no price on it.
type BotWallDetector struct {
	patterns []*regexp.Regexp
}

// NewBotWallDetector creates a detector with the known wall signatures.
func NewBotWallDetector() *BotWallDetector {
	return &BotWallDetector{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)unfortunately we are unable`),
			regexp.MustCompile(`(?i)access denied`),
			regexp.MustCompile(`(?i)bot detected`),
			regexp.MustCompile(`(?i)please verify you are human`),
			regexp.MustCompile(`(?i)security check`),
			regexp.MustCompile(`(?i)checking your browser`),
			regexp.MustCompile(`(?i)ddos protection`),
			regexp.MustCompile(`(?i)captcha`),
			regexp.MustCompile(`(?i)too many requests`),
			regexp.MustCompile(`(?i)enter the characters you see below`),
		},
	}
}

// Detect reports whether the page content looks like a bot wall. Short
// bodies with a matching signature are a strong signal; long product pages
// need two independent hits before being treated as blocked.
func (d *BotWallDetector) Detect(content string) (bool, string) {
	lower := strings.ToLower(content)

	var hits []string
	for _, p := range d.patterns {
		if p.MatchString(lower) {
			hits = append(hits, p.String())
		}
	}

	if len(hits) == 0 {
		return false, ""
	}
	if len(content) < 2000 || len(hits) >= 2 {
		return true, strings.Join(hits, "; ")
	}
	return false, ""
}
