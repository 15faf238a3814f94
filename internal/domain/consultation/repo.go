package consultation

import (
	"context"

	"github.com/google/uuid"
)

type ConsultationRepository interface {
	Create(ctx context.Context, c *Consultation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Consultation, error)
	Update(ctx context.Context, c *Consultation) error
	List(ctx context.Context, limit, offset int) ([]*Consultation, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
	// LinkPrescription records that a prescription was written during the
	// consultation.
	LinkPrescription(ctx context.Context, consultationID, prescriptionID uuid.UUID) error
	PrescriptionIDs(ctx context.Context, consultationID uuid.UUID) ([]uuid.UUID, error)
}
