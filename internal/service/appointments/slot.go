package appointments

import (
	"fmt"
	"time"

	"docconnect/backend/internal/domain"
)

// SlotRules bounds which hour slots may be booked. Hours are doctor-local and
// form the half-open range [FirstHour, LastHour): LastHour itself is refused.
type SlotRules struct {
	FirstHour     int
	LastHour      int
	LeadDays      int
	HorizonMonths int
}

func DefaultSlotRules() SlotRules {
	return SlotRules{
		FirstHour:     9,
		LastHour:      16,
		LeadDays:      2,
		HorizonMonths: 1,
	}
}

// Check applies the hour window, then the past check, then the horizon. The
// first failing rule decides the rejection.
func (r SlotRules) Check(localHour int, at, now time.Time) error {
	if localHour < r.FirstHour || localHour >= r.LastHour {
		return domain.Reject(domain.KindOutOfHourRange,
			fmt.Sprintf("The appointment hour should be between %d and %d!", r.FirstHour, r.LastHour))
	}

	at = at.UTC()
	now = now.UTC()
	if at.Before(now) {
		return domain.ErrPastDate
	}
	if at.After(r.Ceiling(now)) {
		return domain.ErrExceedsBookingHorizon
	}
	return nil
}

// Ceiling is the latest bookable instant: the UTC date LeadDays after now,
// at midnight, plus HorizonMonths calendar months.
func (r SlotRules) Ceiling(now time.Time) time.Time {
	y, m, d := now.UTC().AddDate(0, 0, r.LeadDays).Date()
	return addMonths(time.Date(y, m, d, 0, 0, 0, 0, time.UTC), r.HorizonMonths)
}

// addMonths clamps to the last day of the target month instead of rolling
// over, so Jan 31 + 1 month is Feb 28 (or 29).
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
