package conversion

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DateLayout is the wire format of transaction and rate dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date. Surrounding whitespace is ignored.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	if !d.IsValid() {
		return civil.Date{}, fmt.Errorf("%w %q", ErrInvalidDate, s)
	}
	return d, nil
}

// Today returns the calendar date of now as seen in loc. The time of day is
// dropped so that comparisons are made on year, month and day only.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(now.In(loc))
}

// Window bounds how far back the resolver searches for a historical rate.
type Window struct {
	LookbackDays int
}

// DefaultLookbackDays is the look-back used when none is configured.
const DefaultLookbackDays = 365

// DefaultWindow returns the standard 365 day look-back window.
func DefaultWindow() Window {
	return Window{LookbackDays: DefaultLookbackDays}
}

// Oldest returns the earliest date still inside the window ending today.
func (w Window) Oldest(today civil.Date) civil.Date {
	return today.AddDays(-w.days())
}

// Contains reports whether date lies in [today-LookbackDays, today].
func (w Window) Contains(today, date civil.Date) bool {
	return !date.After(today) && !date.Before(w.Oldest(today))
}

func (w Window) days() int {
	if w.LookbackDays <= 0 {
		return DefaultLookbackDays
	}
	return w.LookbackDays
}
