package appointments

import (
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"

	"docconnect/backend/internal/domain"
	"docconnect/backend/internal/store"
)

// FilterCriteria is the raw, partially specified search a patient submits.
// Dates are free-form strings; anything unparsable is treated as absent.
type FilterCriteria struct {
	PatientUserID    string
	SpecialistName   string
	SpecialtyName    string
	From             string
	To               string
	PatientLocalDate string
	Direction        domain.Direction
}

// ResolveAll builds the unfiltered listing query. The boundary is the
// patient's local date when it parses and now otherwise; upcoming listings
// start at it, past listings end at it.
func ResolveAll(userID, patientLocalDate string, dir domain.Direction, now time.Time) store.AppointmentQuery {
	boundary, ok := parseDate(patientLocalDate)
	if !ok {
		boundary = now.UTC()
	}

	q := store.AppointmentQuery{PatientUserID: userID}
	if dir == domain.DirectionPast {
		q.End = &boundary
	} else {
		q.Start = &boundary
	}
	return q
}

// ResolveFiltered turns criteria into a concrete query. Malformed dates never
// fail: they fall back to the patient's local date, then to now.
func ResolveFiltered(c FilterCriteria, now time.Time) store.AppointmentQuery {
	now = now.UTC()
	past := c.Direction == domain.DirectionPast

	q := store.AppointmentQuery{
		PatientUserID: c.PatientUserID,
		NamePrefix:    stripWhitespace(c.SpecialistName),
		SpecialtyName: c.SpecialtyName,
	}

	// An explicit from is used verbatim; only the implicit path is pinned to now.
	if from, ok := resolveFrom(c.From, c.PatientLocalDate); ok {
		q.Start = &from
	} else if past {
		q.End = &now
	} else {
		q.Start = &now
	}

	if to, ok := parseDate(c.To); ok {
		if past && to.After(now) {
			to = now
		}
		q.End = earliest(q.End, to)
	} else if past {
		q.End = earliest(q.End, now)
	}

	return q
}

func resolveFrom(from, patientLocalDate string) (time.Time, bool) {
	if t, ok := parseDate(from); ok {
		return t, true
	}
	return parseDate(patientLocalDate)
}

func earliest(cur *time.Time, t time.Time) *time.Time {
	if cur != nil && cur.Before(t) {
		return cur
	}
	return &t
}

func parseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// dateparse panics on a handful of malformed inputs.
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
