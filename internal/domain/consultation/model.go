package consultation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Consultation statuses mirror the appointment they belong to: a
// consultation is created in-progress and ends completed.
const (
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

var (
	// ErrNotFound is returned when the requested consultation does not exist.
	ErrNotFound = errors.New("consultation not found")

	// ErrConsultationExists is returned when starting a consultation for
	// an appointment that already has one.
	ErrConsultationExists = errors.New("appointment already has a consultation")
)

// Consultation maps to the consultations table.
type Consultation struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	AppointmentID uuid.UUID   `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID   `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID   `db:"doctor_id" json:"doctor_id"`
	StartTime     time.Time   `db:"start_time" json:"start_time"`
	EndTime       *time.Time  `db:"end_time" json:"end_time,omitempty"`
	Status        string      `db:"status" json:"status"`
	Notes         string      `db:"notes" json:"notes"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
	Prescriptions []uuid.UUID `db:"-" json:"prescription_ids,omitempty"`
}
