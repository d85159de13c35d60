package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Appointment struct {
	bun.BaseModel `bun:"table:appointments,alias:appointment"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	DoctorID      int64     `bun:"doctor_id,notnull"`
	PatientID     int64     `bun:"patient_id,notnull"`
	ScheduledTime time.Time `bun:"scheduled_time,notnull"`
	Notes         string    `bun:"notes"`
	// Canceled and deleted rows hold no slot and drop out of listings.
	IsCanceled    bool      `bun:"is_canceled,notnull"`
	IsDeleted     bool      `bun:"is_deleted,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`

	Doctor  *Doctor  `bun:"rel:belongs-to,join:doctor_id=id"`
	Patient *Patient `bun:"rel:belongs-to,join:patient_id=id"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

// Direction selects which side of the query boundary a listing covers.
type Direction string

const (
	DirectionUpcoming Direction = "Upcoming"
	DirectionPast     Direction = "Past"
)

// ParseDirection accepts the direction name in any letter case.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upcoming":
		return DirectionUpcoming, true
	case "past":
		return DirectionPast, true
	default:
		return "", false
	}
}
