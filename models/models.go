package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// ErrInvalidProductSpec flags a product entry with nothing to fetch.
var ErrInvalidProductSpec = errors.New("product spec needs a url or a flipkart_pid")

// Site identifies which extraction profile applies to a product page.
type Site string

const (
	SiteAmazon   Site = "amazon"
	SiteFlipkart Site = "flipkart"
	SiteMyG      Site = "myg"
	SiteCroma    Site = "croma"
	SiteUnknown  Site = "unknown"
)

// Provenance records which extraction stage produced a candidate.
type Provenance string

const (
	ProvenanceSelector Provenance = "selector"
	ProvenanceJSON     Provenance = "json"
	ProvenanceRegex    Provenance = "regex"
)

// Candidate is a numeric value pulled out of a page that might be the price.
// Candidates are transient; only a filtered, selected value is ever persisted.
type Candidate struct {
	Value      int        `json:"value"`
	Provenance Provenance `json:"provenance"`
}

// Bounds is the configured plausible price range. Values outside it are
// rejected during filtering no matter where they came from.
type Bounds struct {
	Min int
	Max int
}

// Contains reports whether v is a plausible price.
func (b Bounds) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// ProductSpec is one entry of the product list file. At least one of URL or
// FlipkartPID must be set for a check to proceed.
type ProductSpec struct {
	URL         string `json:"url" yaml:"url"`
	FlipkartPID string `json:"flipkart_pid" yaml:"flipkartPid"`
	Name        string `json:"name" yaml:"name"`
}

// Validate flags specs that cannot be checked at all.
func (p ProductSpec) Validate() error {
	if p.URL == "" && p.FlipkartPID == "" {
		return ErrInvalidProductSpec
	}
	return nil
}

// Key returns the stable identity used for history comparison. The URL wins
// when present, even for PID-fetched products.
func (p ProductSpec) Key() string {
	if p.URL != "" {
		return p.URL
	}
	return p.FlipkartPID
}

// DisplayName returns the name to show in alerts, falling back to the key.
func (p ProductSpec) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Key()
}

// TrackedProduct is a product row being monitored for price changes.
type TrackedProduct struct {
	ID           int           `json:"id" db:"id"`
	URL          string        `json:"url" db:"url"`
	FlipkartPID  string        `json:"flipkart_pid" db:"flipkart_pid"`
	Name         string        `json:"name" db:"name"`
	Site         Site          `json:"site" db:"site"`
	CurrentPrice sql.NullInt64 `json:"-" db:"current_price"`
	LastChecked  *time.Time    `json:"last_checked" db:"last_checked"`
	LastFailedAt *time.Time    `json:"last_failed_at" db:"last_failed_at"`
	RetryCount   int           `json:"retry_count" db:"retry_count"`
	NextRetryAt  *time.Time    `json:"next_retry_at" db:"next_retry_at"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
	IsActive     bool          `json:"is_active" db:"is_active"`
}

// Spec converts the stored row back to the spec shape used by the engine.
func (t *TrackedProduct) Spec() ProductSpec {
	return ProductSpec{URL: t.URL, FlipkartPID: t.FlipkartPID, Name: t.Name}
}

// Key returns the history key for this product (url, or pid when url absent).
func (t *TrackedProduct) Key() string {
	return t.Spec().Key()
}

// HasPrice returns true if the product has been priced at least once.
func (t *TrackedProduct) HasPrice() bool {
	return t.CurrentPrice.Valid
}

// CanRetry returns true if a failed product is due for another attempt.
func (t *TrackedProduct) CanRetry() bool {
	if t.NextRetryAt == nil {
		return true
	}
	return time.Now().After(*t.NextRetryAt)
}

// ShouldRetry returns true if the product has failed, is due, and has
// attempts left.
func (t *TrackedProduct) ShouldRetry() bool {
	return t.LastFailedAt != nil && t.CanRetry() && t.RetryCount < 5
}

// RetryDelay returns the backoff before the next retry.
func (t *TrackedProduct) RetryDelay() time.Duration {
	switch t.RetryCount {
	case 0:
		return 10 * time.Minute
	case 1:
		return 30 * time.Minute
	case 2:
		return 1 * time.Hour
	case 3:
		return 3 * time.Hour
	case 4:
		return 6 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// MarshalJSON exposes current_price as a nullable integer.
func (t *TrackedProduct) MarshalJSON() ([]byte, error) {
	type Alias TrackedProduct
	var price *int64
	if t.CurrentPrice.Valid {
		p := t.CurrentPrice.Int64
		price = &p
	}
	return json.Marshal(&struct {
		*Alias
		CurrentPrice *int64 `json:"current_price"`
	}{
		Alias:        (*Alias)(t),
		CurrentPrice: price,
	})
}

// PriceObservation is one append-only row of the price history. Price is a
// whole-unit amount in the tracker's single implicit currency.
type PriceObservation struct {
	ID         int       `json:"id" db:"id"`
	ProductKey string    `json:"product_key" db:"product_key"`
	Site       Site      `json:"site" db:"site"`
	Name       string    `json:"name" db:"name"`
	Price      int       `json:"price" db:"price"`
	CheckedAt  time.Time `json:"checked_at" db:"checked_at"`
}

// AlertKind classifies one observation against the stored history.
type AlertKind string

const (
	AlertNewTracking AlertKind = "new_tracking"
	AlertPriceDrop   AlertKind = "price_drop"
	AlertNoChange    AlertKind = "no_change"
)

// AlertDecision is the change detector's verdict for a fresh observation.
// PercentDrop is only meaningful for AlertPriceDrop; RollingLow is the
// minimum price seen inside the trailing window, including the new price.
type AlertDecision struct {
	Kind        AlertKind `json:"kind"`
	OldPrice    int       `json:"old_price,omitempty"`
	NewPrice    int       `json:"new_price"`
	PercentDrop float64   `json:"percent_drop,omitempty"`
	RollingLow  int       `json:"rolling_low"`
}

// ShouldNotify reports whether the decision produces an outward message.
func (d AlertDecision) ShouldNotify() bool {
	return d.Kind == AlertNewTracking || d.Kind == AlertPriceDrop
}

// AddProductRequest is the API payload for tracking a new product.
type AddProductRequest struct {
	URL         string `json:"url"`
	FlipkartPID string `json:"flipkart_pid"`
	Name        string `json:"name"`
}
