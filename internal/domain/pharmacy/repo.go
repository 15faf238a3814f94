package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

type OrderRepository interface {
	Create(ctx context.Context, o *PrescriptionOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*PrescriptionOrder, error)
	Update(ctx context.Context, o *PrescriptionOrder) error
	List(ctx context.Context, limit, offset int) ([]*PrescriptionOrder, int, error)
	// ListForPharmacist returns the pharmacist's queue: orders they have
	// claimed plus every unclaimed order.
	ListForPharmacist(ctx context.Context, pharmacistID uuid.UUID, limit, offset int) ([]*PrescriptionOrder, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PrescriptionOrder, int, error)
}

// PrescriptionFiller marks a prescription filled once its order completes.
type PrescriptionFiller interface {
	MarkFilled(ctx context.Context, prescriptionID, pharmacistID uuid.UUID) error
}
