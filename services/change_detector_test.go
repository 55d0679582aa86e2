package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"dropwatch/models"
)

type fakeHistory struct {
	last      int
	hasLast   bool
	min       int
	hasMin    bool
	lastErr   error
	minErr    error
	gotSince  time.Time
	minCalled bool
}

func (f *fakeHistory) LastPrice(productKey string) (int, bool, error) {
	return f.last, f.hasLast, f.lastErr
}

func (f *fakeHistory) RollingMin(productKey string, since time.Time) (int, bool, error) {
	f.minCalled = true
	f.gotSince = since
	return f.min, f.hasMin, f.minErr
}

func TestDetectFirstObservationStartsTracking(t *testing.T) {
	t.Parallel()

	d := NewChangeDetector(&fakeHistory{}, 30*24*time.Hour)
	got, err := d.Detect("iphone-15", 52999, time.Now())
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	if got.Kind != models.AlertNewTracking {
		t.Fatalf("kind = %q, want %q", got.Kind, models.AlertNewTracking)
	}
	if got.NewPrice != 52999 || got.RollingLow != 52999 {
		t.Fatalf("new=%d low=%d, want both 52999", got.NewPrice, got.RollingLow)
	}
}

func TestDetectPriceDrop(t *testing.T) {
	t.Parallel()

	store := &fakeHistory{last: 52999, hasLast: true, min: 51999, hasMin: true}
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	d := NewChangeDetector(store, 30*24*time.Hour)
	got, err := d.Detect("iphone-15", 47999, now)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}

	if got.Kind != models.AlertPriceDrop {
		t.Fatalf("kind = %q, want %q", got.Kind, models.AlertPriceDrop)
	}
	if got.OldPrice != 52999 || got.NewPrice != 47999 {
		t.Fatalf("old=%d new=%d", got.OldPrice, got.NewPrice)
	}
	if math.Abs(got.PercentDrop-9.4341) > 0.001 {
		t.Fatalf("percent drop = %f, want ~9.4341", got.PercentDrop)
	}
	// the new price undercuts everything in the window
	if got.RollingLow != 47999 {
		t.Fatalf("rolling low = %d, want 47999", got.RollingLow)
	}
	wantSince := now.Add(-30 * 24 * time.Hour)
	if !store.gotSince.Equal(wantSince) {
		t.Fatalf("window start = %v, want %v", store.gotSince, wantSince)
	}
}

func TestDetectRollingLowKeepsStoredMinimum(t *testing.T) {
	t.Parallel()

	store := &fakeHistory{last: 52999, hasLast: true, min: 45999, hasMin: true}
	d := NewChangeDetector(store, 30*24*time.Hour)

	got, err := d.Detect("iphone-15", 47999, time.Now())
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if got.RollingLow != 45999 {
		t.Fatalf("rolling low = %d, want stored minimum 45999", got.RollingLow)
	}
}

func TestDetectNoChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		last     int
		newPrice int
	}{
		{"same price", 52999, 52999},
		{"price rose", 52999, 54999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeHistory{last: tt.last, hasLast: true}
			d := NewChangeDetector(store, 30*24*time.Hour)

			got, err := d.Detect("iphone-15", tt.newPrice, time.Now())
			if err != nil {
				t.Fatalf("Detect returned error: %v", err)
			}
			if got.Kind != models.AlertNoChange {
				t.Fatalf("kind = %q, want %q", got.Kind, models.AlertNoChange)
			}
			if store.minCalled {
				t.Fatal("no-change path should not query the rolling window")
			}
		})
	}
}

func TestDetectRepeatedSamePriceStaysQuiet(t *testing.T) {
	t.Parallel()

	store := &fakeHistory{last: 47999, hasLast: true}
	d := NewChangeDetector(store, 30*24*time.Hour)

	for i := 0; i < 3; i++ {
		got, err := d.Detect("iphone-15", 47999, time.Now())
		if err != nil {
			t.Fatalf("Detect returned error: %v", err)
		}
		if got.Kind != models.AlertNoChange {
			t.Fatalf("run %d: kind = %q, want %q", i, got.Kind, models.AlertNoChange)
		}
	}
}

func TestDetectRejectsNonPositivePrice(t *testing.T) {
	t.Parallel()

	d := NewChangeDetector(&fakeHistory{}, 30*24*time.Hour)
	for _, price := range []int{0, -500} {
		if _, err := d.Detect("iphone-15", price, time.Now()); err == nil {
			t.Fatalf("Detect(%d) should fail", price)
		}
	}
}

func TestDetectPropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	d := NewChangeDetector(&fakeHistory{lastErr: boom}, 30*24*time.Hour)
	if _, err := d.Detect("iphone-15", 47999, time.Now()); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped %v", err, boom)
	}
}
