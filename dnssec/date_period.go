package dnssec

import (
	"fmt"
	"time"
)

// DatePeriod is a closed interval of time.
type DatePeriod struct {
	Start time.Time
	End   time.Time
}

func NewDatePeriod(start, end time.Time) (DatePeriod, error) {
	if end.Before(start) {
		return DatePeriod{}, fmt.Errorf("%w: %s - %s", ErrInvalidDatePeriod, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return DatePeriod{Start: start, End: end}, nil
}

// Instant is the degenerate period covering only t.
func Instant(t time.Time) DatePeriod {
	return DatePeriod{Start: t, End: t}
}

func (p DatePeriod) valid() bool {
	return !p.End.Before(p.Start)
}

// Overlaps reports whether the two periods share at least one instant.
func (p DatePeriod) Overlaps(other DatePeriod) bool {
	if !p.valid() || !other.valid() {
		return false
	}
	return !p.Start.After(other.End) && !other.Start.After(p.End)
}

// Intersect returns the period common to both, if there is one.
func (p DatePeriod) Intersect(other DatePeriod) (DatePeriod, bool) {
	if !p.Overlaps(other) {
		return DatePeriod{}, false
	}
	start, end := p.Start, p.End
	if other.Start.After(start) {
		start = other.Start
	}
	if other.End.Before(end) {
		end = other.End
	}
	return DatePeriod{Start: start, End: end}, true
}

func (p DatePeriod) Contains(t time.Time) bool {
	return p.valid() && !t.Before(p.Start) && !t.After(p.End)
}

func (p DatePeriod) String() string {
	return fmt.Sprintf("%s - %s", p.Start.Format(time.RFC3339), p.End.Format(time.RFC3339))
}
