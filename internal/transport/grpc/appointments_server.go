package grpc

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"docconnect/backend/internal/domain"
	"docconnect/backend/internal/service/appointments"
	"docconnect/backend/internal/store"
)

const errorDomain = "docconnect"

type AppointmentsServer struct {
	svc      appointmentsService
	log      *slog.Logger
	validate *validator.Validate
}

type appointmentsService interface {
	Schedule(ctx context.Context, in appointments.ScheduleInput) (domain.Appointment, error)
	ListAll(ctx context.Context, userID, patientLocalDate string, dir domain.Direction) ([]appointments.AppointmentView, error)
	ListFiltered(ctx context.Context, c appointments.FilterCriteria) ([]appointments.AppointmentView, error)
	TakenHours(ctx context.Context, doctorID int64) ([]time.Time, error)
	Delete(ctx context.Context, userID string, appointmentID uuid.UUID) error
}

var _ AppointmentsServiceServer = (*AppointmentsServer)(nil)

func NewAppointmentsServer(svc appointmentsService, log *slog.Logger) *AppointmentsServer {
	if log == nil {
		log = slog.Default()
	}
	return &AppointmentsServer{
		svc:      svc,
		log:      log.With(slog.String("component", "grpc.appointments")),
		validate: newValidator(),
	}
}

func (s *AppointmentsServer) ScheduleAppointment(ctx context.Context, req *ScheduleAppointmentRequest) (*ScheduleAppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "ScheduleAppointment"))

	if err := checkRequest(s.validate, log, req); err != nil {
		return nil, err
	}
	local, ok := parseWallClock(req.Date)
	if !ok {
		log.Warn("invalid request", slog.String("reason", "invalid_date"), slog.String("user_id", req.UserID))
		return nil, status.Error(codes.InvalidArgument, "date is not a recognizable date")
	}

	appt, err := s.svc.Schedule(ctx, appointments.ScheduleInput{
		DoctorID:       req.DoctorID,
		UserID:         req.UserID,
		LocalTime:      local,
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey(ctx),
	})
	if err != nil {
		return nil, failure(log, "appointment schedule", err,
			slog.String("user_id", req.UserID),
			slog.Int64("doctor_id", req.DoctorID),
			slog.String("date", req.Date),
		)
	}

	log.Info(
		"appointment scheduled",
		slog.String("appointment_id", appt.ID.String()),
		slog.Int64("doctor_id", appt.DoctorID),
		slog.Int64("patient_id", appt.PatientID),
		slog.Time("scheduled_time", appt.ScheduledTime),
	)

	return &ScheduleAppointmentResponse{Appointment: toAppointment(appt)}, nil
}

func (s *AppointmentsServer) ListAppointments(ctx context.Context, req *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListAppointments"))

	if err := checkRequest(s.validate, log, req); err != nil {
		return nil, err
	}
	dir, ok := domain.ParseDirection(req.Direction)
	if !ok {
		log.Warn("invalid request", slog.String("reason", "invalid_direction"), slog.String("user_id", req.UserID))
		return nil, status.Error(codes.InvalidArgument, "direction must be Upcoming or Past")
	}

	views, err := s.svc.ListAll(ctx, req.UserID, req.PatientLocalDate, dir)
	if err != nil {
		return nil, failure(log, "appointments list", err, slog.String("user_id", req.UserID))
	}

	log.Debug(
		"appointments listed",
		slog.String("user_id", req.UserID),
		slog.String("direction", string(dir)),
		slog.Int("count", len(views)),
	)
	return &ListAppointmentsResponse{Appointments: toSummaries(views)}, nil
}

func (s *AppointmentsServer) FilterAppointments(ctx context.Context, req *FilterAppointmentsRequest) (*ListAppointmentsResponse, error) {
	log := s.log.With(slog.String("rpc", "FilterAppointments"))

	if err := checkRequest(s.validate, log, req); err != nil {
		return nil, err
	}
	dir, ok := domain.ParseDirection(req.Direction)
	if !ok {
		log.Warn("invalid request", slog.String("reason", "invalid_direction"), slog.String("user_id", req.UserID))
		return nil, status.Error(codes.InvalidArgument, "direction must be Upcoming or Past")
	}

	views, err := s.svc.ListFiltered(ctx, appointments.FilterCriteria{
		PatientUserID:    req.UserID,
		SpecialistName:   req.SpecialistName,
		SpecialtyName:    req.SpecialtyName,
		From:             req.From,
		To:               req.To,
		PatientLocalDate: req.PatientLocalDate,
		Direction:        dir,
	})
	if err != nil {
		return nil, failure(log, "appointments filter", err, slog.String("user_id", req.UserID))
	}

	log.Debug(
		"appointments filtered",
		slog.String("user_id", req.UserID),
		slog.String("direction", string(dir)),
		slog.Int("count", len(views)),
	)
	return &ListAppointmentsResponse{Appointments: toSummaries(views)}, nil
}

func (s *AppointmentsServer) GetDoctorTakenHours(ctx context.Context, req *GetDoctorTakenHoursRequest) (*GetDoctorTakenHoursResponse, error) {
	log := s.log.With(slog.String("rpc", "GetDoctorTakenHours"))

	if err := checkRequest(s.validate, log, req); err != nil {
		return nil, err
	}

	taken, err := s.svc.TakenHours(ctx, req.DoctorID)
	if err != nil {
		return nil, failure(log, "taken hours", err, slog.Int64("doctor_id", req.DoctorID))
	}

	log.Debug("taken hours listed", slog.Int64("doctor_id", req.DoctorID), slog.Int("count", len(taken)))
	return &GetDoctorTakenHoursResponse{TakenHours: taken}, nil
}

func (s *AppointmentsServer) DeleteAppointment(ctx context.Context, req *DeleteAppointmentRequest) (*emptypb.Empty, error) {
	log := s.log.With(slog.String("rpc", "DeleteAppointment"))

	if err := checkRequest(s.validate, log, req); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"), slog.String("user_id", req.UserID))
		return nil, status.Error(codes.InvalidArgument, "appointment_id must be a UUID")
	}

	if err := s.svc.Delete(ctx, req.UserID, id); err != nil {
		return nil, failure(log, "appointment delete", err,
			slog.String("appointment_id", id.String()),
			slog.String("user_id", req.UserID),
		)
	}

	log.Info("appointment deleted", slog.String("appointment_id", id.String()), slog.String("user_id", req.UserID))
	return &emptypb.Empty{}, nil
}

// checkRequest rejects nil and structurally invalid requests before they reach the service.
func checkRequest(v *validator.Validate, log *slog.Logger, req any) error {
	if req == nil || reflect.ValueOf(req).IsNil() {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return status.Error(codes.InvalidArgument, "request is required")
	}
	if err := v.Struct(req); err != nil {
		msg := validationMessage(err)
		log.Warn("invalid request", slog.String("reason", "validation"), slog.String("detail", msg))
		return status.Error(codes.InvalidArgument, msg)
	}
	return nil
}

func failure(log *slog.Logger, op string, err error, attrs ...any) error {
	var vErr *appointments.ValidationError
	if errors.As(err, &vErr) {
		log.Warn("invalid request", append(attrs, slog.Any("err", err))...)
		return status.Error(codes.InvalidArgument, vErr.Error())
	}
	if errors.Is(err, store.ErrIdempotencyConflict) {
		log.Info(op+" idempotency conflict", attrs...)
		return status.Error(codes.FailedPrecondition, "This request key was already used for another or a removed appointment. Use a new key.")
	}
	if errors.Is(err, store.ErrNotFound) {
		log.Info("appointment not found", attrs...)
		return status.Error(codes.NotFound, "appointment not found")
	}

	var rej *domain.RejectionError
	if errors.As(err, &rej) {
		log.Info(op+" rejected", append(attrs, slog.String("reason", string(rej.Kind)))...)
		return rejectionStatus(rej).Err()
	}

	log.Error(op+" failed", append(attrs, slog.Any("err", err))...)
	return status.Error(codes.Internal, "internal error")
}

func rejectionStatus(rej *domain.RejectionError) *status.Status {
	st := status.New(rejectionCode(rej.Kind), rej.Message)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason: string(rej.Kind),
		Domain: errorDomain,
	})
	if err != nil {
		return st
	}
	return detailed
}

func rejectionCode(kind domain.RejectionKind) codes.Code {
	switch kind {
	case domain.KindOutOfHourRange, domain.KindPastDate, domain.KindExceedsBookingHorizon:
		return codes.InvalidArgument
	case domain.KindDoctorSlotTaken, domain.KindPatientSlotTaken:
		return codes.AlreadyExists
	case domain.KindPatientNotFound, domain.KindDoctorNotFound:
		return codes.NotFound
	case domain.KindLocationResolution:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// RejectionReason extracts the machine-readable reason from a status error
// produced by this server, or "" when there is none.
func RejectionReason(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.Domain == errorDomain {
			return info.Reason
		}
	}
	return ""
}

func idempotencyKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("idempotency-key")
	if len(values) == 0 {
		values = md.Get("x-idempotency-key")
	}
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// parseWallClock reads a date as typed, keeping its wall clock fields.
func parseWallClock(s string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func toAppointment(a domain.Appointment) Appointment {
	return Appointment{
		ID:            a.ID.String(),
		DoctorID:      a.DoctorID,
		PatientID:     a.PatientID,
		ScheduledTime: a.ScheduledTime.UTC(),
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt.UTC(),
	}
}

func toSummaries(views []appointments.AppointmentView) []AppointmentSummary {
	out := make([]AppointmentSummary, 0, len(views))
	for _, v := range views {
		out = append(out, AppointmentSummary{
			ID:              v.ID.String(),
			DoctorName:      v.DoctorName,
			PatientName:     v.PatientName,
			DoctorSpecialty: v.DoctorSpecialty,
			Date:            v.Date,
			Time:            v.Time,
			Address:         v.Address,
		})
	}
	return out
}
