package domain

import (
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID        string `bun:"id,pk"`
	FirstName string `bun:"first_name,notnull"`
	LastName  string `bun:"last_name,notnull"`
}

type Patient struct {
	bun.BaseModel `bun:"table:patients,alias:patient"`

	ID     int64  `bun:"id,pk,autoincrement"`
	UserID string `bun:"user_id,notnull,unique"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}

type Specialty struct {
	bun.BaseModel `bun:"table:specialties,alias:specialty"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Name      string `bun:"name,notnull"`
	ImageURL  string `bun:"image_url,notnull"`
	IsDeleted bool   `bun:"is_deleted,notnull"`
}

type Location struct {
	bun.BaseModel `bun:"table:locations,alias:location"`

	ID        int64           `bun:"id,pk,autoincrement"`
	CityName  string          `bun:"city_name,notnull"`
	Latitude  decimal.Decimal `bun:"latitude,type:numeric(9,6),notnull"`
	Longitude decimal.Decimal `bun:"longitude,type:numeric(9,6),notnull"`
}

func (l Location) Coordinate() GeoCoordinate {
	return GeoCoordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

type Doctor struct {
	bun.BaseModel `bun:"table:doctors,alias:doctor"`

	ID                int64  `bun:"id,pk,autoincrement"`
	FirstName         string `bun:"first_name,notnull"`
	LastName          string `bun:"last_name,notnull"`
	Address           string `bun:"address,notnull"`
	ImageURL          string `bun:"image_url,notnull"`
	YearsOfExperience *int   `bun:"years_of_experience"`
	Summary           string `bun:"summary,notnull"`
	EducationSummary  string `bun:"education_summary,notnull"`
	SpecialtyID       int64  `bun:"specialty_id,notnull"`
	LocationID        int64  `bun:"location_id,notnull"`
	IsDeleted         bool   `bun:"is_deleted,notnull"`

	Specialty *Specialty `bun:"rel:belongs-to,join:specialty_id=id"`
	Location  *Location  `bun:"rel:belongs-to,join:location_id=id"`
}

// Rating is one patient's 1 to 5 score for a doctor.
type Rating struct {
	bun.BaseModel `bun:"table:ratings,alias:rating"`

	ID        int64  `bun:"id,pk,autoincrement"`
	DoctorID  int64  `bun:"doctor_id,notnull"`
	PatientID int64  `bun:"patient_id,notnull"`
	Points    int    `bun:"points,notnull"`
	Comments  string `bun:"comments,notnull"`
	IsDeleted bool   `bun:"is_deleted,notnull"`
}

// RatedDoctor carries the mean of a doctor's live ratings, 0 when unrated.
type RatedDoctor struct {
	Doctor
	Rating float64
}

// GeoCoordinate is a practice position in decimal degrees.
type GeoCoordinate struct {
	Latitude  decimal.Decimal
	Longitude decimal.Decimal
}

func (c GeoCoordinate) Valid() bool {
	lat, lng := c.Latitude.InexactFloat64(), c.Longitude.InexactFloat64()
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
