package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docconnect/backend/internal/domain"
)

type DirectoryRepository interface {
	DoctorLocation(ctx context.Context, doctorID int64) (domain.GeoCoordinate, error)
	PatientIDForUser(ctx context.Context, userID string) (int64, error)
}

type AppointmentRepository interface {
	IsDoctorFree(ctx context.Context, doctorID int64, at time.Time) (bool, error)
	IsPatientFree(ctx context.Context, patientID int64, at time.Time) (bool, error)
	// Insert persists appt only if neither the doctor nor the patient holds
	// another live appointment at the same instant.
	Insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	Query(ctx context.Context, q AppointmentQuery) ([]domain.Appointment, error)
	TakenHours(ctx context.Context, doctorID int64) ([]time.Time, error)
	Delete(ctx context.Context, userID string, appointmentID uuid.UUID) error
}

// AppointmentQuery selects a patient's appointments. Empty strings and nil
// bounds match everything; both bounds are inclusive.
type AppointmentQuery struct {
	PatientUserID string
	NamePrefix    string
	SpecialtyName string
	Start         *time.Time
	End           *time.Time
}
