package pharmacy

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Order statuses. An order is created pending and unclaimed; a pharmacist
// claims it, processes it, then completes it.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusCompleted = "completed"
)

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("prescription order not found")

	// ErrAlreadyClaimed is returned when claiming an order another
	// pharmacist already holds.
	ErrAlreadyClaimed = errors.New("order is already claimed")

	// ErrNotOrderOwner is returned when a pharmacist tries to advance an
	// order claimable only by its claimer.
	ErrNotOrderOwner = errors.New("order is claimed by another pharmacist")

	// ErrInvalidOrderState is returned when an order cannot move to the
	// requested status from its current one.
	ErrInvalidOrderState = errors.New("order cannot advance from its current status")
)

// PrescriptionOrder maps to the prescription_orders table.
type PrescriptionOrder struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PrescriptionID uuid.UUID  `db:"prescription_id" json:"prescription_id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	PharmacistID   *uuid.UUID `db:"pharmacist_id" json:"pharmacist_id,omitempty"`
	Status         string     `db:"status" json:"status"`
	OrderedAt      time.Time  `db:"ordered_at" json:"ordered_at"`
	ProcessedAt    *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	Notes          string     `db:"notes" json:"notes"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Claimed reports whether a pharmacist holds the order.
func (o *PrescriptionOrder) Claimed() bool { return o.PharmacistID != nil }
