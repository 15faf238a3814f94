package scheduling

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. An appointment only ever moves forward:
// scheduled -> in-progress -> completed.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

var (
	// ErrNotFound is returned when the requested appointment does not exist.
	ErrNotFound = errors.New("appointment not found")

	// ErrInvalidTransition is returned when a status change skips a step
	// or moves backwards.
	ErrInvalidTransition = errors.New("invalid appointment status transition")
)

var transitions = map[string]string{
	StatusScheduled:  StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// CanTransition reports whether an appointment may move from one status to
// another.
func CanTransition(from, to string) bool {
	return transitions[from] == to
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"date" json:"date"`
	Time      string    `db:"time" json:"time"`
	Status    string    `db:"status" json:"status"`
	Type      string    `db:"type" json:"type"`
	Symptoms  string    `db:"symptoms" json:"symptoms"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
