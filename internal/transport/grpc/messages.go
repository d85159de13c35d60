package grpc

import "time"

type ScheduleAppointmentRequest struct {
	DoctorID int64  `json:"doctor_id" validate:"required,gt=0"`
	UserID   string `json:"user_id" validate:"required,max=450"`
	// Date is the requested slot on the doctor's wall clock, for example
	// "2030-03-10 10:00". Minutes and any offset are ignored.
	Date  string `json:"date" validate:"required"`
	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

type ScheduleAppointmentResponse struct {
	Appointment Appointment `json:"appointment"`
}

type Appointment struct {
	ID            string    `json:"id"`
	DoctorID      int64     `json:"doctor_id"`
	PatientID     int64     `json:"patient_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListAppointmentsRequest struct {
	UserID           string `json:"user_id" validate:"required,max=450"`
	PatientLocalDate string `json:"patient_local_date,omitempty"`
	Direction        string `json:"direction" validate:"required"`
}

type FilterAppointmentsRequest struct {
	UserID           string `json:"user_id" validate:"required,max=450"`
	SpecialistName   string `json:"specialist_name,omitempty" validate:"max=200"`
	SpecialtyName    string `json:"specialty_name,omitempty" validate:"max=200"`
	From             string `json:"from,omitempty"`
	To               string `json:"to,omitempty"`
	PatientLocalDate string `json:"patient_local_date,omitempty"`
	Direction        string `json:"direction" validate:"required"`
}

type ListAppointmentsResponse struct {
	Appointments []AppointmentSummary `json:"appointments"`
}

type AppointmentSummary struct {
	ID              string `json:"id"`
	DoctorName      string `json:"doctor_name"`
	PatientName     string `json:"patient_name"`
	DoctorSpecialty string `json:"doctor_specialty"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Address         string `json:"address"`
}

type GetDoctorTakenHoursRequest struct {
	DoctorID int64 `json:"doctor_id" validate:"required,gt=0"`
}

type GetDoctorTakenHoursResponse struct {
	// TakenHours are rendered with the doctor's UTC offset.
	TakenHours []time.Time `json:"taken_hours"`
}

type DeleteAppointmentRequest struct {
	UserID        string `json:"user_id" validate:"required,max=450"`
	AppointmentID string `json:"appointment_id" validate:"required,uuid"`
}
