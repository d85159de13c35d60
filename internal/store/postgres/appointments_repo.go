package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"docconnect/backend/internal/domain"
	"docconnect/backend/internal/store"
)

const (
	doctorSlotConstraint  = "appointments_doctor_slot_key"
	patientSlotConstraint = "appointments_patient_slot_key"
	primaryKeyConstraint  = "appointments_pkey"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

func (r *AppointmentRepo) IsDoctorFree(ctx context.Context, doctorID int64, at time.Time) (bool, error) {
	return slotFree(ctx, r.db, "doctor_id", doctorID, at)
}

func (r *AppointmentRepo) IsPatientFree(ctx context.Context, patientID int64, at time.Time) (bool, error) {
	return slotFree(ctx, r.db, "patient_id", patientID, at)
}

func (r *AppointmentRepo) Insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	at := appt.ScheduledTime.UTC()

	var out domain.Appointment
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Doctor before patient on every path so two bookings never wait on each other.
		if err := lockSlot(ctx, tx, doctorSlotKey(appt.DoctorID, at)); err != nil {
			return err
		}
		if err := lockSlot(ctx, tx, patientSlotKey(appt.PatientID, at)); err != nil {
			return err
		}

		if appt.ID != uuid.Nil {
			existing, found, err := findAppointment(ctx, tx, appt.ID)
			if err != nil {
				return err
			}
			if found {
				// A key whose booking was deleted or canceled is spent; replaying it
				// must not report a booking that no longer holds the slot.
				if existing.IsDeleted || existing.IsCanceled {
					return store.ErrIdempotencyConflict
				}
				if existing.DoctorID != appt.DoctorID ||
					existing.PatientID != appt.PatientID ||
					existing.Notes != appt.Notes ||
					!existing.ScheduledTime.Equal(at) {
					return store.ErrIdempotencyConflict
				}
				out = existing
				return nil
			}
		}

		free, err := slotFree(ctx, tx, "doctor_id", appt.DoctorID, at)
		if err != nil {
			return err
		}
		if !free {
			return store.ErrDoctorSlotTaken
		}
		free, err = slotFree(ctx, tx, "patient_id", appt.PatientID, at)
		if err != nil {
			return err
		}
		if !free {
			return store.ErrPatientSlotTaken
		}

		m := domain.Appointment{
			ID:            appt.ID,
			DoctorID:      appt.DoctorID,
			PatientID:     appt.PatientID,
			ScheduledTime: at,
			Notes:         appt.Notes,
		}
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			return translateInsertError(err)
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) Query(ctx context.Context, q store.AppointmentQuery) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	sel := r.db.NewSelect().
		Model(&rows).
		Relation("Doctor").
		Relation("Doctor.Specialty").
		Relation("Doctor.Location").
		Relation("Patient").
		Relation("Patient.User").
		Where("patient.user_id = ?", q.PatientUserID).
		Where("NOT appointment.is_deleted").
		Where("NOT appointment.is_canceled")

	if q.NamePrefix != "" {
		sel = sel.Where("(doctor.first_name || doctor.last_name) LIKE ?", likePrefix(q.NamePrefix))
	}
	if q.SpecialtyName != "" {
		sel = sel.Where("doctor__specialty.name = ?", q.SpecialtyName)
	}
	if q.Start != nil {
		sel = sel.Where("appointment.scheduled_time >= ?", q.Start.UTC())
	}
	if q.End != nil {
		sel = sel.Where("appointment.scheduled_time <= ?", q.End.UTC())
	}

	if err := sel.OrderExpr("appointment.scheduled_time ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) TakenHours(ctx context.Context, doctorID int64) ([]time.Time, error) {
	var out []time.Time
	err := r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Column("scheduled_time").
		Where("doctor_id = ?", doctorID).
		Where("NOT is_deleted").
		Where("NOT is_canceled").
		OrderExpr("scheduled_time ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = out[i].UTC()
	}
	return out, nil
}

// Delete soft-deletes an appointment owned by the user's patient profile,
// releasing both the doctor and patient slots.
func (r *AppointmentRepo) Delete(ctx context.Context, userID string, appointmentID uuid.UUID) error {
	owner := r.db.NewSelect().
		Model((*domain.Patient)(nil)).
		Column("id").
		Where("user_id = ?", userID)

	res, err := r.db.NewUpdate().
		Table("appointments").
		Set("is_deleted = TRUE").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", appointmentID).
		Where("NOT is_deleted").
		Where("patient_id IN (?)", owner).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func slotFree(ctx context.Context, db bun.IDB, column string, id int64, at time.Time) (bool, error) {
	taken, err := db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("? = ?", bun.Ident(column), id).
		Where("scheduled_time = ?", at.UTC()).
		Where("NOT is_deleted").
		Where("NOT is_canceled").
		Exists(ctx)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func findAppointment(ctx context.Context, tx bun.Tx, id uuid.UUID) (domain.Appointment, bool, error) {
	var rows []domain.Appointment
	err := tx.NewSelect().
		Model(&rows).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Appointment{}, false, err
	}
	if len(rows) == 0 {
		return domain.Appointment{}, false, nil
	}
	return rows[0], true, nil
}

func lockSlot(ctx context.Context, tx bun.Tx, key string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx)
	return err
}

func doctorSlotKey(doctorID int64, at time.Time) string {
	return fmt.Sprintf("doctor:%d:%d", doctorID, at.UTC().Unix())
}

func patientSlotKey(patientID int64, at time.Time) string {
	return fmt.Sprintf("patient:%d:%d", patientID, at.UTC().Unix())
}

func translateInsertError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case doctorSlotConstraint:
		return store.ErrDoctorSlotTaken
	case patientSlotConstraint:
		return store.ErrPatientSlotTaken
	case primaryKeyConstraint:
		return store.ErrIdempotencyConflict
	default:
		return err
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
