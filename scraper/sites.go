package scraper

import (
	"strings"

	"dropwatch/models"
)

// Rule is a single structured lookup: a CSS selector plus an optional
// attribute read. An empty Attr means the element's text content.
type Rule struct {
	Selector string
	Attr     string
}

// Profile is the ordered rule list applied for one classified site. Every
// rule is evaluated; extraction fans out rather than stopping at a hit.
type Profile []Rule

var defaultProfile = Profile{
	{Selector: ".price"},
	{Selector: ".offer-price"},
	{Selector: ".product-price"},
	{Selector: `meta[itemprop="price"]`, Attr: "content"},
	{Selector: `[itemprop="price"]`},
}

var siteProfiles = map[models.Site]Profile{
	models.SiteAmazon: {
		{Selector: ".a-price .a-offscreen"},
		{Selector: "#priceblock_ourprice"},
		{Selector: "#priceblock_dealprice"},
		{Selector: ".a-price-whole"},
	},
	models.SiteFlipkart: {
		{Selector: "div._30jeq3._16Jk6d"},
		{Selector: "div._30jeq3"},
		{Selector: ".Nx9bqj.CxhGGd"},
		{Selector: `meta[itemprop="price"]`, Attr: "content"},
	},
	models.SiteMyG: {
		{Selector: ".price"},
		{Selector: ".offer-price"},
		{Selector: ".product-price .amount"},
	},
	models.SiteCroma: {
		{Selector: ".amount"},
		{Selector: ".pdp-price"},
		{Selector: `span[data-testid="new-price"]`},
	},
	models.SiteUnknown: defaultProfile,
}

// site classification fragments, checked in priority order
var siteFragments = []struct {
	fragment string
	site     models.Site
}{
	{"amazon.", models.SiteAmazon},
	{"flipkart.", models.SiteFlipkart},
	{"myg.", models.SiteMyG},
	{"croma.", models.SiteCroma},
}

// Classify maps a product URL to a site profile name. It is a pure substring
// match and never fails; anything unrecognized (including an empty URL) is
// SiteUnknown and gets the generic profile.
func Classify(rawURL string) models.Site {
	if rawURL == "" {
		return models.SiteUnknown
	}
	lower := strings.ToLower(rawURL)
	for _, f := range siteFragments {
		if strings.Contains(lower, f.fragment) {
			return f.site
		}
	}
	return models.SiteUnknown
}

// ProfileFor returns the rule list for a classified site.
func ProfileFor(site models.Site) Profile {
	if p, ok := siteProfiles[site]; ok {
		return p
	}
	return defaultProfile
}
