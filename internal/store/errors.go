package store

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrDoctorSlotTaken     = errors.New("doctor slot taken")
	ErrPatientSlotTaken    = errors.New("patient slot taken")
	ErrIdempotencyConflict = errors.New("idempotency key conflict")
)
