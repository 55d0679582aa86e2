package services

import (
	"fmt"
	"time"

	"dropwatch/models"
)

// HistoryStore is the detector's view of the append-only price log. The
// concrete implementation lives in the repository package.
type HistoryStore interface {
	LastPrice(productKey string) (int, bool, error)
	RollingMin(productKey string, since time.Time) (int, bool, error)
}

// ChangeDetector classifies a freshly selected price against the stored
// history. It is called before the new observation is appended, so the
// rolling low is folded together with the new price by hand.
type ChangeDetector struct {
	store  HistoryStore
	window time.Duration
}

// NewChangeDetector builds a detector with the configured trailing window.
func NewChangeDetector(store HistoryStore, window time.Duration) *ChangeDetector {
	return &ChangeDetector{store: store, window: window}
}

// Detect returns the alert decision for one observation:
//
//	no prior record            -> new_tracking
//	new price below the last   -> price_drop (with percent and rolling low)
//	equal or higher            -> no_change (never alerts on an increase)
//
// A non-positive price is a caller bug, not a runtime condition, and is the
// only input that produces an error.
func (d *ChangeDetector) Detect(productKey string, newPrice int, now time.Time) (models.AlertDecision, error) {
	if newPrice <= 0 {
		return models.AlertDecision{}, fmt.Errorf("change detector called with non-positive price %d", newPrice)
	}

	lastPrice, hasHistory, err := d.store.LastPrice(productKey)
	if err != nil {
		return models.AlertDecision{}, fmt.Errorf("last price lookup: %w", err)
	}

	if !hasHistory {
		return models.AlertDecision{
			Kind:       models.AlertNewTracking,
			NewPrice:   newPrice,
			RollingLow: newPrice,
		}, nil
	}

	if newPrice >= lastPrice {
		return models.AlertDecision{
			Kind:       models.AlertNoChange,
			OldPrice:   lastPrice,
			NewPrice:   newPrice,
			RollingLow: newPrice,
		}, nil
	}

	decision := models.AlertDecision{
		Kind:        models.AlertPriceDrop,
		OldPrice:    lastPrice,
		NewPrice:    newPrice,
		PercentDrop: float64(lastPrice-newPrice) / float64(lastPrice) * 100,
		RollingLow:  newPrice,
	}

	storedMin, ok, err := d.store.RollingMin(productKey, now.Add(-d.window))
	if err != nil {
		return models.AlertDecision{}, fmt.Errorf("rolling min lookup: %w", err)
	}
	if ok && storedMin < decision.RollingLow {
		decision.RollingLow = storedMin
	}

	return decision, nil
}
