package prescribing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Prescription statuses. A prescription is active from the moment it is
// written and becomes filled when its pharmacy order completes.
const (
	StatusActive = "active"
	StatusFilled = "filled"
)

var (
	// ErrNotFound is returned when the requested prescription does not exist.
	ErrNotFound = errors.New("prescription not found")

	// ErrNoMedications is returned when a prescription carries no
	// medication with a name.
	ErrNoMedications = errors.New("prescription requires at least one named medication")
)

// Prescription maps to the prescriptions table.
type Prescription struct {
	ID            uuid.UUID    `db:"id" json:"id"`
	PatientID     uuid.UUID    `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID    `db:"doctor_id" json:"doctor_id"`
	AppointmentID *uuid.UUID   `db:"appointment_id" json:"appointment_id,omitempty"`
	Date          time.Time    `db:"date" json:"date"`
	Diagnosis     string       `db:"diagnosis" json:"diagnosis"`
	Status        string       `db:"status" json:"status"`
	PharmacistID  *uuid.UUID   `db:"pharmacist_id" json:"pharmacist_id,omitempty"`
	Medications   []Medication `db:"-" json:"medications"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// Medication maps to the prescription_medications table. Rows are written
// once with the prescription and never edited.
type Medication struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	Name           string    `db:"name" json:"name"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      string    `db:"frequency" json:"frequency"`
	Duration       string    `db:"duration" json:"duration"`
	Instructions   string    `db:"instructions" json:"instructions"`
}
