package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Bounds.Min != 1000 || cfg.Bounds.Max != 200000 {
		t.Fatalf("bounds = %+v, want 1000..200000", cfg.Bounds)
	}
	if cfg.RollingWindow != 30*24*time.Hour {
		t.Fatalf("rolling window = %v, want 720h", cfg.RollingWindow)
	}
	if cfg.PacingDelay != 3*time.Second {
		t.Fatalf("pacing delay = %v, want 3s", cfg.PacingDelay)
	}
	if cfg.CheckSchedule != "0 0 */12 * * *" {
		t.Fatalf("schedule = %q", cfg.CheckSchedule)
	}
	if cfg.HistoryRetentionDays != 0 {
		t.Fatalf("retention = %d, want 0 (keep forever)", cfg.HistoryRetentionDays)
	}
	if !cfg.Flipkart.Enabled || len(cfg.Flipkart.Endpoints) != 3 {
		t.Fatalf("flipkart config = %+v", cfg.Flipkart)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("MIN_REASONABLE_PRICE", "500")
	t.Setenv("MAX_REASONABLE_PRICE", "50000")
	t.Setenv("PACING_DELAY", "250ms")
	t.Setenv("FETCH_USER_AGENTS", "agent-a, agent-b")

	cfg := Load()

	if cfg.Bounds.Min != 500 || cfg.Bounds.Max != 50000 {
		t.Fatalf("bounds = %+v", cfg.Bounds)
	}
	if cfg.PacingDelay != 250*time.Millisecond {
		t.Fatalf("pacing delay = %v", cfg.PacingDelay)
	}
	if len(cfg.Fetch.UserAgents) != 2 || cfg.Fetch.UserAgents[1] != "agent-b" {
		t.Fatalf("user agents = %v", cfg.Fetch.UserAgents)
	}
}

func TestLoadIgnoresMalformedEnvValues(t *testing.T) {
	t.Setenv("MIN_REASONABLE_PRICE", "cheap")
	t.Setenv("PACING_DELAY", "soonish")

	cfg := Load()

	if cfg.Bounds.Min != 1000 {
		t.Fatalf("bounds min = %d, want the default", cfg.Bounds.Min)
	}
	if cfg.PacingDelay != 3*time.Second {
		t.Fatalf("pacing delay = %v, want the default", cfg.PacingDelay)
	}
}

func TestLoadProductsJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "products.json")
	data := `[
		{"url": "https://www.amazon.in/dp/B0CHX1W1XY", "name": "iPhone 15"},
		{"flipkart_pid": "GRNDF8ZGDAGBVFZU", "name": "Pixel 8a"}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	specs, err := LoadProducts(path)
	if err != nil {
		t.Fatalf("LoadProducts returned error: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("specs = %d, want 2", len(specs))
	}
	if specs[0].Key() != "https://www.amazon.in/dp/B0CHX1W1XY" {
		t.Fatalf("key = %q", specs[0].Key())
	}
	if specs[1].Key() != "GRNDF8ZGDAGBVFZU" {
		t.Fatalf("pid-only key = %q", specs[1].Key())
	}
}

func TestLoadProductsYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "products.yaml")
	data := `products:
  - url: https://www.croma.com/phone/p/321
    name: Pixel 8a
  - flipkartPid: GRNDF8ZGDAGBVFZU
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	specs, err := LoadProducts(path)
	if err != nil {
		t.Fatalf("LoadProducts returned error: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("specs = %d, want 2", len(specs))
	}
	if specs[1].FlipkartPID != "GRNDF8ZGDAGBVFZU" {
		t.Fatalf("pid = %q", specs[1].FlipkartPID)
	}
}

func TestLoadProductsMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadProducts(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
