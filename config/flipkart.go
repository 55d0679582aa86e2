package config

import (
	"os"
	"strings"
)

// FlipkartConfig holds the API endpoints tried for PID-addressed products.
// Endpoints are templates with a {pid} placeholder and are consulted in
// order; the first one that answers with an in-bounds price wins.
type FlipkartConfig struct {
	Endpoints []string
	Enabled   bool
}

var defaultFlipkartEndpoints = []string{
	"https://www.flipkart.com/api/3/page/dynamic/product?pid={pid}",
	"https://www.flipkart.com/api/3/product/{pid}",
	"https://www.flipkart.com/api/3/page/json/product?pid={pid}",
}

// LoadFlipkartConfig loads Flipkart API configuration from the environment.
func LoadFlipkartConfig() FlipkartConfig {
	cfg := FlipkartConfig{
		Endpoints: defaultFlipkartEndpoints,
		Enabled:   getEnvBool("FLIPKART_API_ENABLED", true),
	}
	if raw := os.Getenv("FLIPKART_API_ENDPOINTS"); raw != "" {
		var endpoints []string
		for _, e := range strings.Split(raw, ",") {
			if e = strings.TrimSpace(e); e != "" {
				endpoints = append(endpoints, e)
			}
		}
		if len(endpoints) > 0 {
			cfg.Endpoints = endpoints
		}
	}
	return cfg
}
