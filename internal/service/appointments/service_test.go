package appointments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"docconnect/backend/internal/domain"
	"docconnect/backend/internal/store"
)

type fakeAppointmentRepo struct {
	isDoctorFreeFn  func(ctx context.Context, doctorID int64, at time.Time) (bool, error)
	isPatientFreeFn func(ctx context.Context, patientID int64, at time.Time) (bool, error)
	insertFn        func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	queryFn         func(ctx context.Context, q store.AppointmentQuery) ([]domain.Appointment, error)
	takenHoursFn    func(ctx context.Context, doctorID int64) ([]time.Time, error)
	deleteFn        func(ctx context.Context, userID string, appointmentID uuid.UUID) error
}

func (f *fakeAppointmentRepo) IsDoctorFree(ctx context.Context, doctorID int64, at time.Time) (bool, error) {
	if f.isDoctorFreeFn == nil {
		panic("IsDoctorFree not configured")
	}
	return f.isDoctorFreeFn(ctx, doctorID, at)
}

func (f *fakeAppointmentRepo) IsPatientFree(ctx context.Context, patientID int64, at time.Time) (bool, error) {
	if f.isPatientFreeFn == nil {
		panic("IsPatientFree not configured")
	}
	return f.isPatientFreeFn(ctx, patientID, at)
}

func (f *fakeAppointmentRepo) Insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if f.insertFn == nil {
		panic("Insert not configured")
	}
	return f.insertFn(ctx, appt)
}

func (f *fakeAppointmentRepo) Query(ctx context.Context, q store.AppointmentQuery) ([]domain.Appointment, error) {
	if f.queryFn == nil {
		panic("Query not configured")
	}
	return f.queryFn(ctx, q)
}

func (f *fakeAppointmentRepo) TakenHours(ctx context.Context, doctorID int64) ([]time.Time, error) {
	if f.takenHoursFn == nil {
		panic("TakenHours not configured")
	}
	return f.takenHoursFn(ctx, doctorID)
}

func (f *fakeAppointmentRepo) Delete(ctx context.Context, userID string, appointmentID uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, userID, appointmentID)
}

type fakeDirectory struct {
	doctorLocationFn   func(ctx context.Context, doctorID int64) (domain.GeoCoordinate, error)
	patientIDForUserFn func(ctx context.Context, userID string) (int64, error)
}

func (f *fakeDirectory) DoctorLocation(ctx context.Context, doctorID int64) (domain.GeoCoordinate, error) {
	if f.doctorLocationFn == nil {
		panic("DoctorLocation not configured")
	}
	return f.doctorLocationFn(ctx, doctorID)
}

func (f *fakeDirectory) PatientIDForUser(ctx context.Context, userID string) (int64, error) {
	if f.patientIDForUserFn == nil {
		panic("PatientIDForUser not configured")
	}
	return f.patientIDForUserFn(ctx, userID)
}

type fakeZones struct {
	resolveFn func(ctx context.Context, coord domain.GeoCoordinate) (*time.Location, error)
}

func (f *fakeZones) Resolve(ctx context.Context, coord domain.GeoCoordinate) (*time.Location, error) {
	if f.resolveFn == nil {
		panic("Resolve not configured")
	}
	return f.resolveFn(ctx, coord)
}

// 2030-03-01 12:00 UTC; the booking ceiling is 2030-04-03 00:00 UTC.
var fixedNow = time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)

func bogota(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	return loc
}

func zonesAt(loc *time.Location) *fakeZones {
	return &fakeZones{
		resolveFn: func(ctx context.Context, coord domain.GeoCoordinate) (*time.Location, error) {
			return loc, nil
		},
	}
}

func doctorAt(lat, lng string) *fakeDirectory {
	return &fakeDirectory{
		doctorLocationFn: func(ctx context.Context, doctorID int64) (domain.GeoCoordinate, error) {
			return domain.GeoCoordinate{
				Latitude:  decimal.RequireFromString(lat),
				Longitude: decimal.RequireFromString(lng),
			}, nil
		},
		patientIDForUserFn: func(ctx context.Context, userID string) (int64, error) {
			return 42, nil
		},
	}
}

func freeRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		isDoctorFreeFn: func(ctx context.Context, doctorID int64, at time.Time) (bool, error) {
			return true, nil
		},
		isPatientFreeFn: func(ctx context.Context, patientID int64, at time.Time) (bool, error) {
			return true, nil
		},
	}
}

func localRequest(y int, m time.Month, d, h int) ScheduleInput {
	return ScheduleInput{
		DoctorID:  7,
		UserID:    "user-1",
		LocalTime: time.Date(y, m, d, h, 0, 0, 0, time.UTC),
	}
}

func TestServiceSchedule_ValidationErrorType(t *testing.T) {
	svc := NewService(&fakeAppointmentRepo{}, &fakeDirectory{}, &fakeZones{}, WithClock(func() time.Time { return fixedNow }))

	tests := []struct {
		name string
		in   ScheduleInput
		want string
	}{
		{name: "missing doctor", in: ScheduleInput{UserID: "u1", LocalTime: fixedNow}, want: "doctor_id is required"},
		{name: "missing user", in: ScheduleInput{DoctorID: 1, UserID: "  ", LocalTime: fixedNow}, want: "user_id is required"},
		{name: "missing date", in: ScheduleInput{DoctorID: 1, UserID: "u1"}, want: "date is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Schedule(context.Background(), tc.in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if vErr.Error() != tc.want {
				t.Fatalf("error = %q, want %q", vErr.Error(), tc.want)
			}
		})
	}
}

func TestServiceSchedule_ConvertsDoctorLocalToUTC(t *testing.T) {
	var got domain.Appointment
	repo := freeRepo()
	repo.insertFn = func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
		got = appt
		return appt, nil
	}

	svc := NewService(repo, doctorAt("4.711", "-74.0721"), zonesAt(bogota(t)), WithClock(func() time.Time { return fixedNow }))

	in := localRequest(2030, 3, 10, 10)
	in.LocalTime = in.LocalTime.Add(37 * time.Minute)
	in.Notes = "  follow-up  "
	if _, err := svc.Schedule(context.Background(), in); err != nil {
		t.Fatalf("Schedule error: %v", err)
	}

	want := time.Date(2030, 3, 10, 15, 0, 0, 0, time.UTC)
	if !got.ScheduledTime.Equal(want) {
		t.Fatalf("scheduled = %v, want %v", got.ScheduledTime, want)
	}
	if got.ScheduledTime.Location() != time.UTC {
		t.Fatalf("scheduled location = %v, want UTC", got.ScheduledTime.Location())
	}
	if got.DoctorID != 7 || got.PatientID != 42 {
		t.Fatalf("appointment ids = (%d, %d), want (7, 42)", got.DoctorID, got.PatientID)
	}
	if got.Notes != "follow-up" {
		t.Fatalf("notes = %q, want %q", got.Notes, "follow-up")
	}
}

func TestServiceSchedule_HourWindow(t *testing.T) {
	tests := []struct {
		hour    int
		wantErr error
	}{
		{hour: 8, wantErr: domain.ErrOutOfHourRange},
		{hour: 9},
		{hour: 15},
		{hour: 16, wantErr: domain.ErrOutOfHourRange},
	}

	for _, tc := range tests {
		repo := freeRepo()
		inserted := false
		repo.insertFn = func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			inserted = true
			return appt, nil
		}
		svc := NewService(repo, doctorAt("4.711", "-74.0721"), zonesAt(bogota(t)), WithClock(func() time.Time { return fixedNow }))

		_, err := svc.Schedule(context.Background(), localRequest(2030, 3, 10, tc.hour))
		if tc.wantErr == nil {
			if err != nil {
				t.Fatalf("hour %d: Schedule error: %v", tc.hour, err)
			}
			if !inserted {
				t.Fatalf("hour %d: expected insert", tc.hour)
			}
			continue
		}
		if !errors.Is(err, tc.wantErr) {
			t.Fatalf("hour %d: err = %v, want %v", tc.hour, err, tc.wantErr)
		}
		if inserted {
			t.Fatalf("hour %d: rejected request reached storage", tc.hour)
		}
	}
}

func TestServiceSchedule_RejectionsNeverInsert(t *testing.T) {
	tests := []struct {
		name    string
		in      ScheduleInput
		repo    func() *fakeAppointmentRepo
		dir     func() *fakeDirectory
		wantErr error
	}{
		{
			name:    "past",
			in:      localRequest(2030, 2, 28, 10),
			repo:    func() *fakeAppointmentRepo { return &fakeAppointmentRepo{} },
			dir:     func() *fakeDirectory { return doctorAt("4.711", "-74.0721") },
			wantErr: domain.ErrPastDate,
		},
		{
			name:    "hour rule wins over past",
			in:      localRequest(2030, 2, 28, 6),
			repo:    func() *fakeAppointmentRepo { return &fakeAppointmentRepo{} },
			dir:     func() *fakeDirectory { return doctorAt("4.711", "-74.0721") },
			wantErr: domain.ErrOutOfHourRange,
		},
		{
			name:    "beyond horizon",
			in:      localRequest(2030, 4, 3, 9),
			repo:    func() *fakeAppointmentRepo { return &fakeAppointmentRepo{} },
			dir:     func() *fakeDirectory { return doctorAt("4.711", "-74.0721") },
			wantErr: domain.ErrExceedsBookingHorizon,
		},
		{
			name: "doctor taken",
			in:   localRequest(2030, 3, 10, 10),
			repo: func() *fakeAppointmentRepo {
				return &fakeAppointmentRepo{
					isDoctorFreeFn: func(ctx context.Context, doctorID int64, at time.Time) (bool, error) {
						return false, nil
					},
				}
			},
			dir:     func() *fakeDirectory { return doctorAt("4.711", "-74.0721") },
			wantErr: domain.ErrDoctorSlotTaken,
		},
		{
			name: "patient taken",
			in:   localRequest(2030, 3, 10, 10),
			repo: func() *fakeAppointmentRepo {
				r := freeRepo()
				r.isPatientFreeFn = func(ctx context.Context, patientID int64, at time.Time) (bool, error) {
					return false, nil
				}
				return r
			},
			dir:     func() *fakeDirectory { return doctorAt("4.711", "-74.0721") },
			wantErr: domain.ErrPatientSlotTaken,
		},
		{
			name: "patient missing",
			in:   localRequest(2030, 3, 10, 10),
			repo: freeRepo,
			dir: func() *fakeDirectory {
				d := doctorAt("4.711", "-74.0721")
				d.patientIDForUserFn = func(ctx context.Context, userID string) (int64, error) {
					return 0, store.ErrNotFound
				}
				return d
			},
			wantErr: domain.ErrPatientNotFound,
		},
		{
			name: "doctor missing",
			in:   localRequest(2030, 3, 10, 10),
			repo: func() *fakeAppointmentRepo { return &fakeAppointmentRepo{} },
			dir: func() *fakeDirectory {
				return &fakeDirectory{
					doctorLocationFn: func(ctx context.Context, doctorID int64) (domain.GeoCoordinate, error) {
						return domain.GeoCoordinate{}, store.ErrNotFound
					},
				}
			},
			wantErr: domain.ErrDoctorNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// insertFn is left nil: reaching storage panics.
			svc := NewService(tc.repo(), tc.dir(), zonesAt(bogota(t)), WithClock(func() time.Time { return fixedNow }))
			_, err := svc.Schedule(context.Background(), tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestServiceSchedule_LocationResolutionFailure(t *testing.T) {
	svc := NewService(&fakeAppointmentRepo{}, doctorAt("0", "0"), &fakeZones{
		resolveFn: func(ctx context.Context, coord domain.GeoCoordinate) (*time.Location, error) {
			return nil, domain.ErrLocationResolution
		},
	}, WithClock(func() time.Time { return fixedNow }))

	_, err := svc.Schedule(context.Background(), localRequest(2030, 3, 10, 10))
	if !errors.Is(err, domain.ErrLocationResolution) {
		t.Fatalf("err = %v, want ErrLocationResolution", err)
	}
}

func TestServiceSchedule_TranslatesLostRace(t *testing.T) {
	tests := []struct {
		storeErr error
		want     error
	}{
		{storeErr: store.ErrDoctorSlotTaken, want: domain.ErrDoctorSlotTaken},
		{storeErr: store.ErrPatientSlotTaken, want: domain.ErrPatientSlotTaken},
		{storeErr: store.ErrIdempotencyConflict, want: store.ErrIdempotencyConflict},
	}

	for _, tc := range tests {
		repo := freeRepo()
		repo.insertFn = func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			return domain.Appointment{}, tc.storeErr
		}
		svc := NewService(repo, doctorAt("4.711", "-74.0721"), zonesAt(bogota(t)), WithClock(func() time.Time { return fixedNow }))

		_, err := svc.Schedule(context.Background(), localRequest(2030, 3, 10, 10))
		if !errors.Is(err, tc.want) {
			t.Fatalf("store err %v: got %v, want %v", tc.storeErr, err, tc.want)
		}
	}
}

func TestServiceSchedule_IdempotencyKeyDeterministicUUID(t *testing.T) {
	var ids []uuid.UUID
	repo := freeRepo()
	repo.insertFn = func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
		ids = append(ids, appt.ID)
		return appt, nil
	}
	svc := NewService(repo, doctorAt("4.711", "-74.0721"), zonesAt(bogota(t)), WithClock(func() time.Time { return fixedNow }))

	in := localRequest(2030, 3, 10, 10)
	in.IdempotencyKey = "k1"
	for i := 0; i < 2; i++ {
		if _, err := svc.Schedule(context.Background(), in); err != nil {
			t.Fatalf("Schedule error: %v", err)
		}
	}
	in.IdempotencyKey = ""
	if _, err := svc.Schedule(context.Background(), in); err != nil {
		t.Fatalf("Schedule error: %v", err)
	}

	if ids[0] == uuid.Nil || ids[0] != ids[1] {
		t.Fatalf("keyed ids = %v, want equal and non-nil", ids[:2])
	}
	if ids[2] != uuid.Nil {
		t.Fatalf("unkeyed id = %v, want nil for the store to assign", ids[2])
	}
}

func TestServiceSchedule_KeyedReplayReachesInsert(t *testing.T) {
	stored := domain.Appointment{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000aa"), DoctorID: 7, PatientID: 42}
	inserts := 0
	repo := &fakeAppointmentRepo{
		isDoctorFreeFn: func(ctx context.Context, doctorID int64, at time.Time) (bool, error) {
			return false, nil
		},
		isPatientFreeFn: func(ctx context.Context, patientID int64, at time.Time) (bool, error) {
			return false, nil
		},
		insertFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
			inserts++
			return stored, nil
		},
	}
	svc := NewService(repo, doctorAt("4.711", "-74.0721"), zonesAt(bogota(t)), WithClock(func() time.Time { return fixedNow }))

	in := localRequest(2030, 3, 10, 10)
	in.IdempotencyKey = "k1"
	got, err := svc.Schedule(context.Background(), in)
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	if got.ID != stored.ID || inserts != 1 {
		t.Fatalf("Schedule = %v after %d inserts, want stored appointment after 1", got.ID, inserts)
	}

	in.IdempotencyKey = ""
	if _, err := svc.Schedule(context.Background(), in); !errors.Is(err, domain.ErrDoctorSlotTaken) {
		t.Fatalf("unkeyed err = %v, want ErrDoctorSlotTaken", err)
	}
	if inserts != 1 {
		t.Fatalf("unkeyed request reached Insert")
	}
}

func TestServiceSchedule_RejectsLongIdempotencyKey(t *testing.T) {
	svc := NewService(&fakeAppointmentRepo{}, &fakeDirectory{}, &fakeZones{}, WithClock(func() time.Time { return fixedNow }))

	in := localRequest(2030, 3, 10, 10)
	in.IdempotencyKey = strings.Repeat("k", 257)
	_, err := svc.Schedule(context.Background(), in)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestServiceTakenHours_RoundTrip(t *testing.T) {
	var stored time.Time
	repo := freeRepo()
	repo.insertFn = func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
		stored = appt.ScheduledTime
		return appt, nil
	}
	repo.takenHoursFn = func(ctx context.Context, doctorID int64) ([]time.Time, error) {
		return []time.Time{stored}, nil
	}
	loc := bogota(t)
	svc := NewService(repo, doctorAt("4.711", "-74.0721"), zonesAt(loc), WithClock(func() time.Time { return fixedNow }))

	if _, err := svc.Schedule(context.Background(), localRequest(2030, 3, 10, 10)); err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	if stored.Hour() != 15 {
		t.Fatalf("stored hour = %d, want 15", stored.Hour())
	}

	hours, err := svc.TakenHours(context.Background(), 7)
	if err != nil {
		t.Fatalf("TakenHours error: %v", err)
	}
	if len(hours) != 1 {
		t.Fatalf("len(hours) = %d, want 1", len(hours))
	}
	if hours[0].Hour() != 10 || hours[0].Location() != loc {
		t.Fatalf("taken hour = %v, want 10:00 America/Bogota", hours[0])
	}
}

func TestServiceTakenHours_EmptySkipsZoneLookup(t *testing.T) {
	svc := NewService(&fakeAppointmentRepo{
		takenHoursFn: func(ctx context.Context, doctorID int64) ([]time.Time, error) {
			return nil, nil
		},
	}, &fakeDirectory{}, &fakeZones{})

	hours, err := svc.TakenHours(context.Background(), 7)
	if err != nil {
		t.Fatalf("TakenHours error: %v", err)
	}
	if hours == nil || len(hours) != 0 {
		t.Fatalf("hours = %#v, want empty non-nil slice", hours)
	}
}

func TestServiceListAll_UsesClockAndPresents(t *testing.T) {
	var gotQuery store.AppointmentQuery
	repo := &fakeAppointmentRepo{
		queryFn: func(ctx context.Context, q store.AppointmentQuery) ([]domain.Appointment, error) {
			gotQuery = q
			return []domain.Appointment{
				{ScheduledTime: time.Date(2030, 3, 3, 10, 0, 0, 0, time.UTC)},
				{ScheduledTime: time.Date(2030, 3, 2, 14, 0, 0, 0, time.UTC)},
			}, nil
		},
	}
	svc := NewService(repo, &fakeDirectory{}, &fakeZones{}, WithClock(func() time.Time { return fixedNow }))

	views, err := svc.ListAll(context.Background(), "user-1", "not a date", domain.DirectionUpcoming)
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if gotQuery.Start == nil || !gotQuery.Start.Equal(fixedNow) || gotQuery.End != nil {
		t.Fatalf("query window = (%v, %v), want (%v, nil)", gotQuery.Start, gotQuery.End, fixedNow)
	}
	if len(views) != 2 || views[0].Date != "3/2/2030" {
		t.Fatalf("views = %+v, want ascending by day", views)
	}
}

func TestServiceList_ValidatesInput(t *testing.T) {
	svc := NewService(&fakeAppointmentRepo{}, &fakeDirectory{}, &fakeZones{})

	var vErr *ValidationError
	if _, err := svc.ListAll(context.Background(), "", "", domain.DirectionPast); !errors.As(err, &vErr) {
		t.Fatalf("ListAll(empty user) err = %v, want *ValidationError", err)
	}
	if _, err := svc.ListAll(context.Background(), "u1", "", domain.Direction("Later")); !errors.As(err, &vErr) {
		t.Fatalf("ListAll(bad direction) err = %v, want *ValidationError", err)
	}
	if _, err := svc.ListFiltered(context.Background(), FilterCriteria{PatientUserID: "u1"}); !errors.As(err, &vErr) {
		t.Fatalf("ListFiltered(no direction) err = %v, want *ValidationError", err)
	}
}

func TestServiceListFiltered_PassesResolvedQuery(t *testing.T) {
	var gotQuery store.AppointmentQuery
	svc := NewService(&fakeAppointmentRepo{
		queryFn: func(ctx context.Context, q store.AppointmentQuery) ([]domain.Appointment, error) {
			gotQuery = q
			return nil, nil
		},
	}, &fakeDirectory{}, &fakeZones{}, WithClock(func() time.Time { return fixedNow }))

	views, err := svc.ListFiltered(context.Background(), FilterCriteria{
		PatientUserID:  "user-1",
		SpecialistName: "Gregory House",
		SpecialtyName:  "Cardiology",
		From:           "2023-01-01",
		Direction:      domain.DirectionPast,
	})
	if err != nil {
		t.Fatalf("ListFiltered error: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("len(views) = %d, want 0", len(views))
	}
	if gotQuery.NamePrefix != "GregoryHouse" || gotQuery.SpecialtyName != "Cardiology" {
		t.Fatalf("predicates = (%q, %q)", gotQuery.NamePrefix, gotQuery.SpecialtyName)
	}
	if gotQuery.End == nil || !gotQuery.End.Equal(fixedNow) {
		t.Fatalf("end = %v, want %v", gotQuery.End, fixedNow)
	}
}

func TestServiceDelete_Validation(t *testing.T) {
	svc := NewService(&fakeAppointmentRepo{
		deleteFn: func(ctx context.Context, userID string, appointmentID uuid.UUID) error {
			return store.ErrNotFound
		},
	}, &fakeDirectory{}, &fakeZones{})

	var vErr *ValidationError
	if err := svc.Delete(context.Background(), "", uuid.New()); !errors.As(err, &vErr) {
		t.Fatalf("Delete(empty user) err = %v, want *ValidationError", err)
	}
	if err := svc.Delete(context.Background(), "u1", uuid.Nil); !errors.As(err, &vErr) {
		t.Fatalf("Delete(nil id) err = %v, want *ValidationError", err)
	}
	if err := svc.Delete(context.Background(), "u1", uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Delete err = %v, want ErrNotFound", err)
	}
}
