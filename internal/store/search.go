package store

import (
	"context"

	"docconnect/backend/internal/domain"
)

// DoctorSearchRepository backs the patient-facing doctor directory. Deleted
// doctors and specialties never appear in its results.
type DoctorSearchRepository interface {
	SuggestDoctors(ctx context.Context, namePrefix string) ([]domain.Doctor, error)
	FilterDoctors(ctx context.Context, q DoctorQuery) ([]domain.RatedDoctor, error)
	Doctor(ctx context.Context, doctorID int64) (domain.RatedDoctor, error)
	SuggestCities(ctx context.Context, namePrefix string) ([]domain.Location, error)
	Specialties(ctx context.Context) ([]domain.Specialty, error)
}

// DoctorQuery narrows a doctor search. Zero values match everything.
type DoctorQuery struct {
	NamePrefix  string
	SpecialtyID int64
	LocationID  int64
}
