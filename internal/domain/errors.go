package domain

// RejectionKind is the stable machine-readable reason a booking was refused.
type RejectionKind string

const (
	KindLocationResolution    RejectionKind = "LOCATION_RESOLUTION_FAILED"
	KindOutOfHourRange        RejectionKind = "OUT_OF_HOUR_RANGE"
	KindPastDate              RejectionKind = "PAST_DATE"
	KindExceedsBookingHorizon RejectionKind = "EXCEEDS_BOOKING_HORIZON"
	KindDoctorSlotTaken       RejectionKind = "DOCTOR_SLOT_TAKEN"
	KindPatientSlotTaken      RejectionKind = "PATIENT_SLOT_TAKEN"
	KindPatientNotFound       RejectionKind = "PATIENT_NOT_FOUND"
	KindDoctorNotFound        RejectionKind = "DOCTOR_NOT_FOUND"
)

// RejectionError is returned when a request is well-formed but cannot be
// honoured. Two rejections match under errors.Is when their kinds are equal,
// so callers compare against the sentinels below regardless of message.
type RejectionError struct {
	Kind    RejectionKind
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

func (e *RejectionError) Is(target error) bool {
	t, ok := target.(*RejectionError)
	return ok && t.Kind == e.Kind
}

func Reject(kind RejectionKind, msg string) error {
	return &RejectionError{Kind: kind, Message: msg}
}

var (
	ErrLocationResolution    = &RejectionError{Kind: KindLocationResolution, Message: "Could not determine the doctor's time zone."}
	ErrOutOfHourRange        = &RejectionError{Kind: KindOutOfHourRange, Message: "The appointment hour should be between 9 and 16!"}
	ErrPastDate              = &RejectionError{Kind: KindPastDate, Message: "You can't book an appointment in the past."}
	ErrExceedsBookingHorizon = &RejectionError{Kind: KindExceedsBookingHorizon, Message: "You can't book an appointment further than one month from now."}
	ErrDoctorSlotTaken       = &RejectionError{Kind: KindDoctorSlotTaken, Message: "The doctor already has this appointment hour taken!"}
	ErrPatientSlotTaken      = &RejectionError{Kind: KindPatientSlotTaken, Message: "The patient already has this appointment hour taken!"}
	ErrPatientNotFound       = &RejectionError{Kind: KindPatientNotFound, Message: "No patient profile exists for this user."}
	ErrDoctorNotFound        = &RejectionError{Kind: KindDoctorNotFound, Message: "The doctor does not exist."}
)
