package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"docconnect/backend/internal/domain"
	"docconnect/backend/internal/store"
)

// Service answers the patient-facing doctor search: name and city
// suggestions, filtered listings, doctor profiles and the specialty catalog.
type Service struct {
	repo         store.DoctorSearchRepository
	imageBaseURL string
}

type Option func(*Service)

// WithImageBaseURL prefixes stored image paths so clients receive absolute URLs.
func WithImageBaseURL(base string) Option {
	return func(s *Service) {
		s.imageBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

func NewService(repo store.DoctorSearchRepository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type DoctorSuggestion struct {
	ID        int64
	FirstName string
	LastName  string
}

type DoctorCard struct {
	ID            int64
	ImageURL      string
	FirstName     string
	LastName      string
	SpecialtyName string
	Address       string
	Rating        float64
}

type DoctorProfile struct {
	DoctorCard
	Summary           string
	EducationSummary  string
	YearsOfExperience *int
}

type CitySuggestion struct {
	ID       int64
	CityName string
}

type SpecialtyView struct {
	ID       int64
	Name     string
	ImageURL string
}

// DoctorCriteria narrows FilterDoctors. Whitespace inside Name is ignored and
// zero ids match every specialty or city.
type DoctorCriteria struct {
	Name        string
	SpecialtyID int64
	CityID      int64
}

// SuggestDoctors returns doctors whose joined first and last name starts with
// the input once its whitespace is removed. Blank input suggests nothing.
func (s *Service) SuggestDoctors(ctx context.Context, startingWith string) ([]DoctorSuggestion, error) {
	prefix := stripWhitespace(startingWith)
	if prefix == "" {
		return []DoctorSuggestion{}, nil
	}

	rows, err := s.repo.SuggestDoctors(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("suggest doctors: %w", err)
	}
	out := make([]DoctorSuggestion, 0, len(rows))
	for _, d := range rows {
		out = append(out, DoctorSuggestion{ID: d.ID, FirstName: d.FirstName, LastName: d.LastName})
	}
	return out, nil
}

func (s *Service) FilterDoctors(ctx context.Context, c DoctorCriteria) ([]DoctorCard, error) {
	rows, err := s.repo.FilterDoctors(ctx, store.DoctorQuery{
		NamePrefix:  stripWhitespace(c.Name),
		SpecialtyID: max(c.SpecialtyID, 0),
		LocationID:  max(c.CityID, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("filter doctors: %w", err)
	}
	out := make([]DoctorCard, 0, len(rows))
	for _, d := range rows {
		out = append(out, s.card(d))
	}
	return out, nil
}

func (s *Service) Doctor(ctx context.Context, doctorID int64) (DoctorProfile, error) {
	if doctorID <= 0 {
		return DoctorProfile{}, domain.ErrDoctorNotFound
	}

	d, err := s.repo.Doctor(ctx, doctorID)
	if errors.Is(err, store.ErrNotFound) {
		return DoctorProfile{}, domain.ErrDoctorNotFound
	}
	if err != nil {
		return DoctorProfile{}, fmt.Errorf("load doctor: %w", err)
	}
	return DoctorProfile{
		DoctorCard:        s.card(d),
		Summary:           d.Summary,
		EducationSummary:  d.EducationSummary,
		YearsOfExperience: d.YearsOfExperience,
	}, nil
}

// SuggestCities compares the input against city names with spaces removed,
// so "LasV" finds "Las Vegas". Blank input suggests nothing.
func (s *Service) SuggestCities(ctx context.Context, startingWith string) ([]CitySuggestion, error) {
	prefix := stripWhitespace(startingWith)
	if prefix == "" {
		return []CitySuggestion{}, nil
	}

	rows, err := s.repo.SuggestCities(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("suggest cities: %w", err)
	}
	out := make([]CitySuggestion, 0, len(rows))
	for _, l := range rows {
		out = append(out, CitySuggestion{ID: l.ID, CityName: l.CityName})
	}
	return out, nil
}

// Specialties lists the live specialty catalog ordered by name.
func (s *Service) Specialties(ctx context.Context) ([]SpecialtyView, error) {
	rows, err := s.repo.Specialties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specialties: %w", err)
	}
	out := make([]SpecialtyView, 0, len(rows))
	for _, sp := range rows {
		out = append(out, SpecialtyView{ID: sp.ID, Name: sp.Name, ImageURL: s.imageURL(sp.ImageURL)})
	}
	return out, nil
}

func (s *Service) card(d domain.RatedDoctor) DoctorCard {
	c := DoctorCard{
		ID:        d.ID,
		ImageURL:  s.imageURL(d.ImageURL),
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Rating:    d.Rating,
	}
	if d.Specialty != nil {
		c.SpecialtyName = d.Specialty.Name
	}
	city := ""
	if d.Location != nil {
		city = d.Location.CityName
	}
	c.Address = d.Address + ", " + city
	return c
}

func (s *Service) imageURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || s.imageBaseURL == "" || strings.Contains(path, "://") {
		return path
	}
	return s.imageBaseURL + "/" + strings.TrimLeft(path, "/")
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
