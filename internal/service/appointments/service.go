package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docconnect/backend/internal/domain"
	"docconnect/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type ZoneResolver interface {
	Resolve(ctx context.Context, coord domain.GeoCoordinate) (*time.Location, error)
}

type Service struct {
	appts store.AppointmentRepository
	dir   store.DirectoryRepository
	zones ZoneResolver
	rules SlotRules
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithSlotRules(rules SlotRules) Option {
	return func(s *Service) {
		s.rules = rules
	}
}

func NewService(appts store.AppointmentRepository, dir store.DirectoryRepository, zones ZoneResolver, opts ...Option) *Service {
	s := &Service{
		appts: appts,
		dir:   dir,
		zones: zones,
		rules: DefaultSlotRules(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ScheduleInput struct {
	DoctorID int64
	UserID   string
	// LocalTime carries the requested date and hour as read off the doctor's
	// wall clock. Its minutes, seconds and location are ignored.
	LocalTime      time.Time
	Notes          string
	IdempotencyKey string
}

func (s *Service) Schedule(ctx context.Context, in ScheduleInput) (domain.Appointment, error) {
	if in.DoctorID <= 0 {
		return domain.Appointment{}, validationError("doctor_id is required")
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return domain.Appointment{}, validationError("user_id is required")
	}
	if in.LocalTime.IsZero() {
		return domain.Appointment{}, validationError("date is required")
	}
	id, err := idempotentID(userID, in.IdempotencyKey)
	if err != nil {
		return domain.Appointment{}, err
	}
	// A keyed request may be a replay of the booking that already holds the
	// slot, so Insert makes the final call for it.
	replayable := id != uuid.Nil

	loc, err := s.doctorZone(ctx, in.DoctorID)
	if err != nil {
		return domain.Appointment{}, err
	}

	y, m, d := in.LocalTime.Date()
	hour := in.LocalTime.Hour()
	at := time.Date(y, m, d, hour, 0, 0, 0, loc).UTC()

	if err := s.rules.Check(hour, at, s.now()); err != nil {
		return domain.Appointment{}, err
	}

	free, err := s.appts.IsDoctorFree(ctx, in.DoctorID, at)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("check doctor slot: %w", err)
	}
	if !free && !replayable {
		return domain.Appointment{}, domain.ErrDoctorSlotTaken
	}

	patientID, err := s.dir.PatientIDForUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Appointment{}, domain.ErrPatientNotFound
	}
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("look up patient: %w", err)
	}

	free, err = s.appts.IsPatientFree(ctx, patientID, at)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("check patient slot: %w", err)
	}
	if !free && !replayable {
		return domain.Appointment{}, domain.ErrPatientSlotTaken
	}

	appt := domain.Appointment{
		ID:            id,
		DoctorID:      in.DoctorID,
		PatientID:     patientID,
		ScheduledTime: at,
		Notes:         strings.TrimSpace(in.Notes),
	}

	// The repository re-checks both slots atomically; a lost race surfaces here.
	out, err := s.appts.Insert(ctx, appt)
	switch {
	case errors.Is(err, store.ErrDoctorSlotTaken):
		return domain.Appointment{}, domain.ErrDoctorSlotTaken
	case errors.Is(err, store.ErrPatientSlotTaken):
		return domain.Appointment{}, domain.ErrPatientSlotTaken
	case err != nil:
		return domain.Appointment{}, err
	}
	return out, nil
}

func (s *Service) ListAll(ctx context.Context, userID, patientLocalDate string, dir domain.Direction) ([]AppointmentView, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, validationError("user_id is required")
	}
	if dir != domain.DirectionUpcoming && dir != domain.DirectionPast {
		return nil, validationError("direction must be Upcoming or Past")
	}

	rows, err := s.appts.Query(ctx, ResolveAll(userID, patientLocalDate, dir, s.now()))
	if err != nil {
		return nil, err
	}
	return Present(rows, dir), nil
}

func (s *Service) ListFiltered(ctx context.Context, c FilterCriteria) ([]AppointmentView, error) {
	if strings.TrimSpace(c.PatientUserID) == "" {
		return nil, validationError("user_id is required")
	}
	if c.Direction != domain.DirectionUpcoming && c.Direction != domain.DirectionPast {
		return nil, validationError("direction must be Upcoming or Past")
	}

	rows, err := s.appts.Query(ctx, ResolveFiltered(c, s.now()))
	if err != nil {
		return nil, err
	}
	return Present(rows, c.Direction), nil
}

// TakenHours returns the doctor's booked slots on the doctor's wall clock.
func (s *Service) TakenHours(ctx context.Context, doctorID int64) ([]time.Time, error) {
	if doctorID <= 0 {
		return nil, validationError("doctor_id is required")
	}

	taken, err := s.appts.TakenHours(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if len(taken) == 0 {
		return []time.Time{}, nil
	}

	loc, err := s.doctorZone(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, 0, len(taken))
	for _, t := range taken {
		out = append(out, t.In(loc))
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, userID string, appointmentID uuid.UUID) error {
	if strings.TrimSpace(userID) == "" {
		return validationError("user_id is required")
	}
	if appointmentID == uuid.Nil {
		return validationError("appointment_id is required")
	}
	return s.appts.Delete(ctx, userID, appointmentID)
}

func idempotentID(userID, key string) (uuid.UUID, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil, nil
	}
	if len(key) > 256 {
		return uuid.Nil, validationError("idempotency_key too long")
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("docconnect:schedule_appointment:"+userID+":"+key)), nil
}

func (s *Service) doctorZone(ctx context.Context, doctorID int64) (*time.Location, error) {
	coord, err := s.dir.DoctorLocation(ctx, doctorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load doctor location: %w", err)
	}

	loc, err := s.zones.Resolve(ctx, coord)
	if err != nil {
		if errors.Is(err, domain.ErrLocationResolution) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve doctor time zone: %w", err)
	}
	return loc, nil
}
