package prescribing

import (
	"context"

	"github.com/google/uuid"
)

type PrescriptionRepository interface {
	// Create inserts the prescription together with its medications.
	Create(ctx context.Context, rx *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	List(ctx context.Context, limit, offset int) ([]*Prescription, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	// MarkFilled flips the prescription to filled and records the
	// pharmacist who dispensed it.
	MarkFilled(ctx context.Context, prescriptionID, pharmacistID uuid.UUID) error
}
