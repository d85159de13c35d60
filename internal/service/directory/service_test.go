package directory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"docconnect/backend/internal/domain"
	"docconnect/backend/internal/store"
)

type fakeSearchRepo struct {
	suggestDoctorsFn func(ctx context.Context, namePrefix string) ([]domain.Doctor, error)
	filterDoctorsFn  func(ctx context.Context, q store.DoctorQuery) ([]domain.RatedDoctor, error)
	doctorFn         func(ctx context.Context, doctorID int64) (domain.RatedDoctor, error)
	suggestCitiesFn  func(ctx context.Context, namePrefix string) ([]domain.Location, error)
	specialtiesFn    func(ctx context.Context) ([]domain.Specialty, error)
}

func (f *fakeSearchRepo) SuggestDoctors(ctx context.Context, namePrefix string) ([]domain.Doctor, error) {
	if f.suggestDoctorsFn == nil {
		panic("SuggestDoctors not configured")
	}
	return f.suggestDoctorsFn(ctx, namePrefix)
}

func (f *fakeSearchRepo) FilterDoctors(ctx context.Context, q store.DoctorQuery) ([]domain.RatedDoctor, error) {
	if f.filterDoctorsFn == nil {
		panic("FilterDoctors not configured")
	}
	return f.filterDoctorsFn(ctx, q)
}

func (f *fakeSearchRepo) Doctor(ctx context.Context, doctorID int64) (domain.RatedDoctor, error) {
	if f.doctorFn == nil {
		panic("Doctor not configured")
	}
	return f.doctorFn(ctx, doctorID)
}

func (f *fakeSearchRepo) SuggestCities(ctx context.Context, namePrefix string) ([]domain.Location, error) {
	if f.suggestCitiesFn == nil {
		panic("SuggestCities not configured")
	}
	return f.suggestCitiesFn(ctx, namePrefix)
}

func (f *fakeSearchRepo) Specialties(ctx context.Context) ([]domain.Specialty, error) {
	if f.specialtiesFn == nil {
		panic("Specialties not configured")
	}
	return f.specialtiesFn(ctx)
}

func house() domain.RatedDoctor {
	years := 20
	return domain.RatedDoctor{
		Doctor: domain.Doctor{
			ID:                7,
			FirstName:         "Gregory",
			LastName:          "House",
			Address:           "221B Baker St",
			ImageURL:          "doctors/house.png",
			Summary:           "Head of diagnostics.",
			EducationSummary:  "Johns Hopkins",
			YearsOfExperience: &years,
			Specialty:         &domain.Specialty{ID: 2, Name: "Diagnostics"},
			Location:          &domain.Location{ID: 3, CityName: "Princeton"},
		},
		Rating: 4.5,
	}
}

func TestSuggestDoctors_StripsWhitespace(t *testing.T) {
	var gotPrefix string
	svc := NewService(&fakeSearchRepo{
		suggestDoctorsFn: func(ctx context.Context, namePrefix string) ([]domain.Doctor, error) {
			gotPrefix = namePrefix
			return []domain.Doctor{{ID: 7, FirstName: "Gregory", LastName: "House"}}, nil
		},
	})

	got, err := svc.SuggestDoctors(context.Background(), " Gregory\tHo ")
	if err != nil {
		t.Fatalf("SuggestDoctors error: %v", err)
	}
	if gotPrefix != "GregoryHo" {
		t.Fatalf("prefix = %q, want %q", gotPrefix, "GregoryHo")
	}
	want := []DoctorSuggestion{{ID: 7, FirstName: "Gregory", LastName: "House"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("suggestions = %+v, want %+v", got, want)
	}
}

func TestSuggestions_BlankInputSkipsLookup(t *testing.T) {
	svc := NewService(&fakeSearchRepo{})

	doctors, err := svc.SuggestDoctors(context.Background(), "   ")
	if err != nil || doctors == nil || len(doctors) != 0 {
		t.Fatalf("SuggestDoctors = (%v, %v), want empty slice", doctors, err)
	}
	cities, err := svc.SuggestCities(context.Background(), "")
	if err != nil || cities == nil || len(cities) != 0 {
		t.Fatalf("SuggestCities = (%v, %v), want empty slice", cities, err)
	}
}

func TestFilterDoctors_BuildsQueryAndCards(t *testing.T) {
	var gotQuery store.DoctorQuery
	svc := NewService(&fakeSearchRepo{
		filterDoctorsFn: func(ctx context.Context, q store.DoctorQuery) ([]domain.RatedDoctor, error) {
			gotQuery = q
			return []domain.RatedDoctor{house(), {Doctor: domain.Doctor{ID: 9, FirstName: "No", LastName: "Relations", Address: "1 Main"}}}, nil
		},
	}, WithImageBaseURL(" https://img.example.org/ "))

	got, err := svc.FilterDoctors(context.Background(), DoctorCriteria{Name: "Gregory House", SpecialtyID: 2, CityID: -1})
	if err != nil {
		t.Fatalf("FilterDoctors error: %v", err)
	}
	wantQuery := store.DoctorQuery{NamePrefix: "GregoryHouse", SpecialtyID: 2}
	if gotQuery != wantQuery {
		t.Fatalf("query = %+v, want %+v", gotQuery, wantQuery)
	}

	want := []DoctorCard{
		{
			ID:            7,
			ImageURL:      "https://img.example.org/doctors/house.png",
			FirstName:     "Gregory",
			LastName:      "House",
			SpecialtyName: "Diagnostics",
			Address:       "221B Baker St, Princeton",
			Rating:        4.5,
		},
		{ID: 9, FirstName: "No", LastName: "Relations", Address: "1 Main, "},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cards = %+v, want %+v", got, want)
	}
}

func TestFilterDoctors_WrapsStoreError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeSearchRepo{
		filterDoctorsFn: func(ctx context.Context, q store.DoctorQuery) ([]domain.RatedDoctor, error) {
			return nil, boom
		},
	})
	if _, err := svc.FilterDoctors(context.Background(), DoctorCriteria{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestDoctor_Profile(t *testing.T) {
	svc := NewService(&fakeSearchRepo{
		doctorFn: func(ctx context.Context, doctorID int64) (domain.RatedDoctor, error) {
			if doctorID != 7 {
				t.Fatalf("doctorID = %d, want 7", doctorID)
			}
			return house(), nil
		},
	})

	got, err := svc.Doctor(context.Background(), 7)
	if err != nil {
		t.Fatalf("Doctor error: %v", err)
	}
	if got.Summary != "Head of diagnostics." || got.EducationSummary != "Johns Hopkins" {
		t.Fatalf("profile text = (%q, %q)", got.Summary, got.EducationSummary)
	}
	if got.YearsOfExperience == nil || *got.YearsOfExperience != 20 {
		t.Fatalf("years of experience = %v, want 20", got.YearsOfExperience)
	}
	if got.ImageURL != "doctors/house.png" {
		t.Fatalf("image url without base = %q, want stored path", got.ImageURL)
	}
	if got.Address != "221B Baker St, Princeton" || got.Rating != 4.5 {
		t.Fatalf("card = %+v", got.DoctorCard)
	}
}

func TestDoctor_NotFound(t *testing.T) {
	svc := NewService(&fakeSearchRepo{
		doctorFn: func(ctx context.Context, doctorID int64) (domain.RatedDoctor, error) {
			return domain.RatedDoctor{}, store.ErrNotFound
		},
	})

	for _, id := range []int64{0, -3, 99} {
		if _, err := svc.Doctor(context.Background(), id); !errors.Is(err, domain.ErrDoctorNotFound) {
			t.Fatalf("Doctor(%d) err = %v, want ErrDoctorNotFound", id, err)
		}
	}
}

func TestSuggestCities_StripsWhitespace(t *testing.T) {
	var gotPrefix string
	svc := NewService(&fakeSearchRepo{
		suggestCitiesFn: func(ctx context.Context, namePrefix string) ([]domain.Location, error) {
			gotPrefix = namePrefix
			return []domain.Location{{ID: 4, CityName: "Las Vegas"}}, nil
		},
	})

	got, err := svc.SuggestCities(context.Background(), "Las V")
	if err != nil {
		t.Fatalf("SuggestCities error: %v", err)
	}
	if gotPrefix != "LasV" {
		t.Fatalf("prefix = %q, want %q", gotPrefix, "LasV")
	}
	if len(got) != 1 || got[0] != (CitySuggestion{ID: 4, CityName: "Las Vegas"}) {
		t.Fatalf("cities = %+v", got)
	}
}

func TestSpecialties_PrefixesImages(t *testing.T) {
	svc := NewService(&fakeSearchRepo{
		specialtiesFn: func(ctx context.Context) ([]domain.Specialty, error) {
			return []domain.Specialty{
				{ID: 1, Name: "Cardiology", ImageURL: "/specialties/heart.svg"},
				{ID: 2, Name: "Dermatology", ImageURL: "https://cdn.example.org/skin.svg"},
				{ID: 3, Name: "Neurology"},
			}, nil
		},
	}, WithImageBaseURL("https://img.example.org"))

	got, err := svc.Specialties(context.Background())
	if err != nil {
		t.Fatalf("Specialties error: %v", err)
	}
	want := []SpecialtyView{
		{ID: 1, Name: "Cardiology", ImageURL: "https://img.example.org/specialties/heart.svg"},
		{ID: 2, Name: "Dermatology", ImageURL: "https://cdn.example.org/skin.svg"},
		{ID: 3, Name: "Neurology"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("specialties = %+v, want %+v", got, want)
	}
}
