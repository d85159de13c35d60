package appointments

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"docconnect/backend/internal/domain"
)

const (
	displayDateLayout = "1/2/2006"
	displayTimeLayout = "3:04 PM"
)

type AppointmentView struct {
	ID              uuid.UUID
	DoctorName      string
	PatientName     string
	DoctorSpecialty string
	Date            string
	Time            string
	Address         string
	ScheduledTime   time.Time
}

// Present orders rows by calendar day (ascending for upcoming, descending for
// past) and always by ascending hour within a day, then projects them.
func Present(rows []domain.Appointment, dir domain.Direction) []AppointmentView {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b domain.Appointment) int {
		da, db := day(a.ScheduledTime), day(b.ScheduledTime)
		if c := da.Compare(db); c != 0 {
			if dir == domain.DirectionPast {
				return -c
			}
			return c
		}
		return a.ScheduledTime.UTC().Hour() - b.ScheduledTime.UTC().Hour()
	})

	out := make([]AppointmentView, 0, len(sorted))
	for _, a := range sorted {
		out = append(out, toView(a))
	}
	return out
}

func toView(a domain.Appointment) AppointmentView {
	at := a.ScheduledTime.UTC()
	v := AppointmentView{
		ID:            a.ID,
		Date:          at.Format(displayDateLayout),
		Time:          at.Format(displayTimeLayout),
		ScheduledTime: at,
	}
	if d := a.Doctor; d != nil {
		v.DoctorName = fullName(d.FirstName, d.LastName)
		if d.Specialty != nil {
			v.DoctorSpecialty = d.Specialty.Name
		}
		city := ""
		if d.Location != nil {
			city = d.Location.CityName
		}
		v.Address = d.Address + ", " + city
	}
	if p := a.Patient; p != nil && p.User != nil {
		v.PatientName = fullName(p.User.FirstName, p.User.LastName)
	}
	return v
}

func fullName(first, last string) string {
	return first + " " + last
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
