package scrumdomain

import (
	"fmt"
	"time"

	"github.com/Black-And-White-Club/scrum-bot/app/shared/channel"
)

// DateLayout is the storage format of a scrum date.
const DateLayout = "2006-01-02"

// Date is a local calendar day.
type Date string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates a stored date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid scrum date %q: %w", s, err)
	}
	return Date(s), nil
}

// Scrum is one day's poll as seen by the lifecycle.
type Scrum struct {
	ID     int64
	Date   Date
	IsOpen bool
	Poll   channel.MessageRef
}

// Window holds the local hours at which polls open and are forced closed.
type Window struct {
	NotifyHour int
	CloseHour  int
}

// DefaultWindow opens at 03:00 and forces the close at 22:00.
var DefaultWindow = Window{NotifyHour: 3, CloseHour: 22}

// Validate rejects hours outside a day and windows that close before they open.
func (w Window) Validate() error {
	if w.NotifyHour < 0 || w.NotifyHour > 23 || w.CloseHour < 0 || w.CloseHour > 23 {
		return fmt.Errorf("scrum window hours must be within 0-23 (notify=%d close=%d)", w.NotifyHour, w.CloseHour)
	}
	if w.NotifyHour >= w.CloseHour {
		return fmt.Errorf("scrum notify hour %d must be before close hour %d", w.NotifyHour, w.CloseHour)
	}
	return nil
}

// ShouldOpen reports whether a poll must be opened: none exists for today
// and the notify hour has been reached. now must already be in local time.
func (w Window) ShouldOpen(now time.Time, today *Scrum) bool {
	return today == nil && now.Hour() >= w.NotifyHour
}

// ShouldForceClose returns the scrum to close when today's poll is still open
// at or after the close hour, and nil otherwise.
func (w Window) ShouldForceClose(now time.Time, today *Scrum) *Scrum {
	if today == nil || !today.IsOpen {
		return nil
	}
	if now.Hour() < w.CloseHour {
		return nil
	}
	return today
}
