package grpc

type SuggestSpecialistsRequest struct {
	StartingWith string `json:"starting_with" validate:"max=200"`
}

type SuggestSpecialistsResponse struct {
	Specialists []SpecialistName `json:"specialists"`
}

type SpecialistName struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type FilterSpecialistsRequest struct {
	DoctorName  string `json:"doctor_name,omitempty" validate:"max=200"`
	SpecialtyID int64  `json:"specialty_id,omitempty" validate:"gte=0"`
	CityID      int64  `json:"city_id,omitempty" validate:"gte=0"`
}

type FilterSpecialistsResponse struct {
	Specialists []Specialist `json:"specialists"`
}

type Specialist struct {
	ID            int64   `json:"id"`
	ImageURL      string  `json:"image_url"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	SpecialtyName string  `json:"specialty_name"`
	Address       string  `json:"address"`
	Rating        float64 `json:"rating"`
}

type GetSpecialistRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type GetSpecialistResponse struct {
	Specialist        Specialist `json:"specialist"`
	Summary           string     `json:"summary,omitempty"`
	EducationSummary  string     `json:"education_summary,omitempty"`
	YearsOfExperience *int       `json:"years_of_experience,omitempty"`
}

type SuggestCitiesRequest struct {
	StartingWith string `json:"starting_with" validate:"max=200"`
}

type SuggestCitiesResponse struct {
	Cities []City `json:"cities"`
}

type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ListSpecialtiesResponse struct {
	Specialties []Specialty `json:"specialties"`
}

type Specialty struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}
