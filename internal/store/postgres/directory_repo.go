package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"docconnect/backend/internal/domain"
	"docconnect/backend/internal/store"
)

var (
	_ store.DirectoryRepository    = (*DirectoryRepo)(nil)
	_ store.DoctorSearchRepository = (*DirectoryRepo)(nil)
)

type DirectoryRepo struct {
	db *bun.DB
}

func NewDirectoryRepo(db *bun.DB) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

func (r *DirectoryRepo) DoctorLocation(ctx context.Context, doctorID int64) (domain.GeoCoordinate, error) {
	var doc domain.Doctor
	err := r.db.NewSelect().
		Model(&doc).
		Relation("Location").
		Where("doctor.id = ?", doctorID).
		Where("NOT doctor.is_deleted").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GeoCoordinate{}, store.ErrNotFound
	}
	if err != nil {
		return domain.GeoCoordinate{}, err
	}
	if doc.Location == nil {
		return domain.GeoCoordinate{}, store.ErrNotFound
	}
	return doc.Location.Coordinate(), nil
}

func (r *DirectoryRepo) PatientIDForUser(ctx context.Context, userID string) (int64, error) {
	var id int64
	err := r.db.NewSelect().
		Model((*domain.Patient)(nil)).
		Column("id").
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx, &id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SuggestDoctors matches the prefix against first and last name joined without
// a space, ignoring letter case.
func (r *DirectoryRepo) SuggestDoctors(ctx context.Context, namePrefix string) ([]domain.Doctor, error) {
	var rows []domain.Doctor
	err := r.db.NewSelect().
		Model(&rows).
		Column("id", "first_name", "last_name").
		Where("(doctor.first_name || doctor.last_name) ILIKE ?", likePrefix(namePrefix)).
		Where("NOT doctor.is_deleted").
		OrderExpr("doctor.first_name ASC, doctor.last_name ASC, doctor.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DirectoryRepo) FilterDoctors(ctx context.Context, q store.DoctorQuery) ([]domain.RatedDoctor, error) {
	var rows []domain.Doctor
	sel := r.db.NewSelect().
		Model(&rows).
		Relation("Specialty").
		Relation("Location").
		Where("NOT doctor.is_deleted")

	if q.NamePrefix != "" {
		sel = sel.Where("(doctor.first_name || doctor.last_name) ILIKE ?", likePrefix(q.NamePrefix))
	}
	if q.SpecialtyID > 0 {
		sel = sel.Where("doctor.specialty_id = ?", q.SpecialtyID)
	}
	if q.LocationID > 0 {
		sel = sel.Where("doctor.location_id = ?", q.LocationID)
	}

	if err := sel.OrderExpr("doctor.last_name ASC, doctor.first_name ASC, doctor.id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return r.withRatings(ctx, rows)
}

func (r *DirectoryRepo) Doctor(ctx context.Context, doctorID int64) (domain.RatedDoctor, error) {
	var doc domain.Doctor
	err := r.db.NewSelect().
		Model(&doc).
		Relation("Specialty").
		Relation("Location").
		Where("doctor.id = ?", doctorID).
		Where("NOT doctor.is_deleted").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RatedDoctor{}, store.ErrNotFound
	}
	if err != nil {
		return domain.RatedDoctor{}, err
	}

	rated, err := r.withRatings(ctx, []domain.Doctor{doc})
	if err != nil {
		return domain.RatedDoctor{}, err
	}
	return rated[0], nil
}

// SuggestCities matches the prefix against city names with their spaces
// removed, ignoring letter case.
func (r *DirectoryRepo) SuggestCities(ctx context.Context, namePrefix string) ([]domain.Location, error) {
	var rows []domain.Location
	err := r.db.NewSelect().
		Model(&rows).
		Column("id", "city_name").
		Where("replace(location.city_name, ' ', '') ILIKE ?", likePrefix(namePrefix)).
		OrderExpr("location.city_name ASC, location.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DirectoryRepo) Specialties(ctx context.Context) ([]domain.Specialty, error) {
	var rows []domain.Specialty
	err := r.db.NewSelect().
		Model(&rows).
		Where("NOT specialty.is_deleted").
		OrderExpr("specialty.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type doctorRating struct {
	DoctorID int64   `bun:"doctor_id"`
	Rating   float64 `bun:"rating"`
}

func (r *DirectoryRepo) withRatings(ctx context.Context, doctors []domain.Doctor) ([]domain.RatedDoctor, error) {
	out := make([]domain.RatedDoctor, 0, len(doctors))
	if len(doctors) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(doctors))
	for _, d := range doctors {
		ids = append(ids, d.ID)
	}

	var means []doctorRating
	err := r.db.NewSelect().
		Model((*domain.Rating)(nil)).
		Column("doctor_id").
		ColumnExpr("avg(rating.points)::float8 AS rating").
		Where("rating.doctor_id IN (?)", bun.In(ids)).
		Where("NOT rating.is_deleted").
		Group("doctor_id").
		Scan(ctx, &means)
	if err != nil {
		return nil, fmt.Errorf("load doctor ratings: %w", err)
	}

	byDoctor := make(map[int64]float64, len(means))
	for _, m := range means {
		byDoctor[m.DoctorID] = m.Rating
	}
	for _, d := range doctors {
		out = append(out, domain.RatedDoctor{Doctor: d, Rating: byDoctor[d.ID]})
	}
	return out, nil
}
