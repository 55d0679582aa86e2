package scraper

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"dropwatch/config"
	"dropwatch/models"
)

// Getter fetches a URL and returns the response body. Satisfied by the
// fetcher package; kept as an interface so the client is testable without
// real HTTP plumbing.
type Getter interface {
	Get(ctx context.Context, url string) (string, error)
}

// FlipkartClient resolves a product PID to a price through Flipkart's JSON
// APIs. Endpoints are tried in their configured order and the first one that
// responds with an in-bounds candidate wins; later endpoints are never
// consulted after a hit.
type FlipkartClient struct {
	cfg    config.FlipkartConfig
	getter Getter
	bounds models.Bounds
}

// NewFlipkartClient wires the endpoint list, the fetcher and the bounds.
func NewFlipkartClient(cfg config.FlipkartConfig, getter Getter, bounds models.Bounds) *FlipkartClient {
	return &FlipkartClient{cfg: cfg, getter: getter, bounds: bounds}
}

// FetchPrice looks the PID up across the configured endpoints.
func (c *FlipkartClient) FetchPrice(ctx context.Context, pid string) (int, error) {
	if !c.cfg.Enabled {
		return 0, ErrNoCandidate
	}

	for _, endpoint := range c.cfg.Endpoints {
		url := strings.Replace(endpoint, "{pid}", pid, 1)

		body, err := c.getter.Get(ctx, url)
		if err != nil {
			log.Printf("Flipkart endpoint failed for pid %s: %v", pid, err)
			continue
		}

		data := parseJSONLenient(body)
		if data == nil {
			continue
		}

		if cand, ok := FindPriceInJSON(data, c.bounds); ok {
			return cand.Value, nil
		}
	}

	return 0, ErrNoCandidate
}

var jsonBlob = regexp.MustCompile(`(?s)(\{.+\})`)

// parseJSONLenient decodes a response body that should be JSON but may be
// wrapped in noise (HTML shells, JS prefixes). Returns nil when nothing
// decodable is found.
func parseJSONLenient(body string) interface{} {
	var data interface{}
	if err := json.Unmarshal([]byte(body), &data); err == nil {
		return data
	}

	m := jsonBlob.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
		return nil
	}
	return data
}
