package grpc

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"google.golang.org/protobuf/types/known/emptypb"

	"docconnect/backend/internal/service/directory"
)

type DirectoryServer struct {
	svc      directoryService
	log      *slog.Logger
	validate *validator.Validate
}

type directoryService interface {
	SuggestDoctors(ctx context.Context, startingWith string) ([]directory.DoctorSuggestion, error)
	FilterDoctors(ctx context.Context, c directory.DoctorCriteria) ([]directory.DoctorCard, error)
	Doctor(ctx context.Context, doctorID int64) (directory.DoctorProfile, error)
	SuggestCities(ctx context.Context, startingWith string) ([]directory.CitySuggestion, error)
	Specialties(ctx context.Context) ([]directory.SpecialtyView, error)
}

var _ DirectoryServiceServer = (*DirectoryServer)(nil)

func NewDirectoryServer(svc directoryService, log *slog.Logger) *DirectoryServer {
	if log == nil {
		log = slog.Default()
	}
	return &DirectoryServer{
		svc:      svc,
		log:      log.With(slog.String("component", "grpc.directory")),
		validate: newValidator(),
	}
}

func (s *DirectoryServer) SuggestSpecialists(ctx context.Context, req *SuggestSpecialistsRequest) (*SuggestSpecialistsResponse, error) {
	log := s.log.With(slog.String("rpc", "SuggestSpecialists"))

	if err := checkRequest(s.validate, log, req); err != nil {
		return nil, err
	}

	found, err := s.svc.SuggestDoctors(ctx, req.StartingWith)
	if err != nil {
		return nil, failure(log, "specialist suggestions", err, slog.String("starting_with", req.StartingWith))
	}

	out := make([]SpecialistName, 0, len(found))
	for _, d := range found {
		out = append(out, SpecialistName{ID: d.ID, FirstName: d.FirstName, LastName: d.LastName})
	}
	log.Debug("specialists suggested", slog.Int("count", len(out)))
	return &SuggestSpecialistsResponse{Specialists: out}, nil
}

func (s *DirectoryServer) FilterSpecialists(ctx context.Context, req *FilterSpecialistsRequest) (*FilterSpecialistsResponse, error) {
	log := s.log.With(slog.String("rpc", "FilterSpecialists"))

	if err := checkRequest(s.validate, log, req); err != nil {
		return nil, err
	}

	cards, err := s.svc.FilterDoctors(ctx, directory.DoctorCriteria{
		Name:        req.DoctorName,
		SpecialtyID: req.SpecialtyID,
		CityID:      req.CityID,
	})
	if err != nil {
		return nil, failure(log, "specialists filter", err,
			slog.Int64("specialty_id", req.SpecialtyID),
			slog.Int64("city_id", req.CityID),
		)
	}

	out := make([]Specialist, 0, len(cards))
	for _, c := range cards {
		out = append(out, toSpecialist(c))
	}
	log.Debug("specialists filtered", slog.Int("count", len(out)))
	return &FilterSpecialistsResponse{Specialists: out}, nil
}

func (s *DirectoryServer) GetSpecialist(ctx context.Context, req *GetSpecialistRequest) (*GetSpecialistResponse, error) {
	log := s.log.With(slog.String("rpc", "GetSpecialist"))

	if err := checkRequest(s.validate, log, req); err != nil {
		return nil, err
	}

	p, err := s.svc.Doctor(ctx, req.ID)
	if err != nil {
		return nil, failure(log, "specialist lookup", err, slog.Int64("doctor_id", req.ID))
	}

	return &GetSpecialistResponse{
		Specialist:        toSpecialist(p.DoctorCard),
		Summary:           p.Summary,
		EducationSummary:  p.EducationSummary,
		YearsOfExperience: p.YearsOfExperience,
	}, nil
}

func (s *DirectoryServer) SuggestCities(ctx context.Context, req *SuggestCitiesRequest) (*SuggestCitiesResponse, error) {
	log := s.log.With(slog.String("rpc", "SuggestCities"))

	if err := checkRequest(s.validate, log, req); err != nil {
		return nil, err
	}

	found, err := s.svc.SuggestCities(ctx, req.StartingWith)
	if err != nil {
		return nil, failure(log, "city suggestions", err, slog.String("starting_with", req.StartingWith))
	}

	out := make([]City, 0, len(found))
	for _, c := range found {
		out = append(out, City{ID: c.ID, Name: c.CityName})
	}
	log.Debug("cities suggested", slog.Int("count", len(out)))
	return &SuggestCitiesResponse{Cities: out}, nil
}

func (s *DirectoryServer) ListSpecialties(ctx context.Context, _ *emptypb.Empty) (*ListSpecialtiesResponse, error) {
	log := s.log.With(slog.String("rpc", "ListSpecialties"))

	views, err := s.svc.Specialties(ctx)
	if err != nil {
		return nil, failure(log, "specialties list", err)
	}

	out := make([]Specialty, 0, len(views))
	for _, v := range views {
		out = append(out, Specialty{ID: v.ID, Name: v.Name, ImageURL: v.ImageURL})
	}
	return &ListSpecialtiesResponse{Specialties: out}, nil
}

func toSpecialist(c directory.DoctorCard) Specialist {
	return Specialist{
		ID:            c.ID,
		ImageURL:      c.ImageURL,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		SpecialtyName: c.SpecialtyName,
		Address:       c.Address,
		Rating:        c.Rating,
	}
}
