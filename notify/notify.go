package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"dropwatch/models"
)

// Alert carries everything a delivery channel needs to render a message.
type Alert struct {
	Name     string
	URL      string
	Decision models.AlertDecision
}

// Notifier delivers one alert over one channel.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

// Subject returns a short one-line summary, used as the e-mail subject.
func Subject(a Alert) string {
	switch a.Decision.Kind {
	case models.AlertPriceDrop:
		return fmt.Sprintf("Price Dropped: %s now %s", a.Name, Rupees(a.Decision.NewPrice))
	default:
		return fmt.Sprintf("Started tracking: %s", a.Name)
	}
}

// Message renders the alert body. Two shapes exist: the first observation of
// a product announces tracking, and a drop reports old, new, percent and the
// 30-day low.
func Message(a Alert) string {
	var b strings.Builder

	switch a.Decision.Kind {
	case models.AlertPriceDrop:
		fmt.Fprintf(&b, "Price Dropped: %s\n", a.Name)
		fmt.Fprintf(&b, "Was %s, now %s (%.1f%% off)\n",
			Rupees(a.Decision.OldPrice), Rupees(a.Decision.NewPrice), a.Decision.PercentDrop)
		fmt.Fprintf(&b, "30-day low: %s\n", Rupees(a.Decision.RollingLow))
	default:
		fmt.Fprintf(&b, "Started tracking: %s\n", a.Name)
		fmt.Fprintf(&b, "Current price: %s\n", Rupees(a.Decision.NewPrice))
	}

	if a.URL != "" {
		b.WriteString(a.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Rupees formats a whole-unit amount with a currency symbol and thousands
// separators, e.g. 52999 -> "₹52,999".
func Rupees(v int) string {
	s := fmt.Sprintf("%d", v)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := "₹" + strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

// Fanout sends an alert over every configured channel. A failing channel is
// logged and does not stop the others.
type Fanout struct {
	channels []Notifier
}

// NewFanout builds a fan-out over the given channels.
func NewFanout(channels ...Notifier) *Fanout {
	return &Fanout{channels: channels}
}

// Send delivers to all channels and returns the combined errors, if any.
func (f *Fanout) Send(ctx context.Context, alert Alert) error {
	var errs []error
	for _, ch := range f.channels {
		if err := ch.Send(ctx, alert); err != nil {
			log.Printf("Failed to deliver alert for %s: %v", alert.Name, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
