package records

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Medical record types. Consultation notes are written when a doctor
// finishes a visit; lab reports are filed separately.
const (
	TypeConsultation = "consultation"
	TypeLabReport    = "lab_report"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("medical record not found")

// MedicalRecord maps to the medical_records table. Records are append
// only: once written they are never updated or deleted.
type MedicalRecord struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	PatientID uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID  *uuid.UUID        `db:"doctor_id" json:"doctor_id,omitempty"`
	Date      time.Time         `db:"date" json:"date"`
	Type      string            `db:"type" json:"type"`
	Diagnosis *string           `db:"diagnosis" json:"diagnosis,omitempty"`
	Treatment *string           `db:"treatment" json:"treatment,omitempty"`
	Notes     *string           `db:"notes" json:"notes,omitempty"`
	TestName  *string           `db:"test_name" json:"test_name,omitempty"`
	Results   map[string]string `db:"results" json:"results,omitempty"`
	Status    *string           `db:"status" json:"status,omitempty"`
	LabName   *string           `db:"lab_name" json:"lab_name,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}
