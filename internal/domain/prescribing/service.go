package prescribing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medisphere/portal/internal/domain/consultation"
	"github.com/medisphere/portal/internal/domain/pharmacy"
	"github.com/medisphere/portal/internal/domain/records"
	"github.com/medisphere/portal/internal/platform/auth"
	"github.com/medisphere/portal/internal/platform/db"
)

type Service struct {
	prescriptions PrescriptionRepository
	consultations consultation.ConsultationRepository
	records       records.MedicalRecordRepository
	orders        pharmacy.OrderRepository
	tx            db.TxRunner
}

func NewService(
	prescriptions PrescriptionRepository,
	consultations consultation.ConsultationRepository,
	recs records.MedicalRecordRepository,
	orders pharmacy.OrderRepository,
	tx db.TxRunner,
) *Service {
	return &Service{
		prescriptions: prescriptions,
		consultations: consultations,
		records:       recs,
		orders:        orders,
		tx:            tx,
	}
}

// Create writes a prescription during an in-progress consultation. In the
// same unit of work it files the consultation note in the patient's medical
// record, links the prescription to the consultation and opens an unclaimed
// pharmacy order.
func (s *Service) Create(ctx context.Context, actor auth.Actor, consultationID uuid.UUID, rx *Prescription) error {
	consult, err := s.consultations.GetByID(ctx, consultationID)
	if err != nil {
		return err
	}
	if consult.DoctorID != actor.ID {
		return fmt.Errorf("consultation belongs to another doctor")
	}
	if consult.Status != consultation.StatusInProgress {
		return fmt.Errorf("prescriptions can only be written during an in-progress consultation")
	}
	if strings.TrimSpace(rx.Diagnosis) == "" {
		return fmt.Errorf("diagnosis is required")
	}

	// Blank-named entries are dropped so the stored list matches what
	// was accepted.
	var meds []Medication
	var medNames []string
	for _, m := range rx.Medications {
		if strings.TrimSpace(m.Name) != "" {
			meds = append(meds, m)
			medNames = append(medNames, m.Name)
		}
	}
	if len(meds) == 0 {
		return ErrNoMedications
	}
	rx.Medications = meds

	rx.PatientID = consult.PatientID
	rx.DoctorID = actor.ID
	rx.AppointmentID = &consult.AppointmentID
	rx.Status = StatusActive
	if rx.Date.IsZero() {
		rx.Date = time.Now()
	}

	treatment := strings.Join(medNames, ", ")
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.prescriptions.Create(ctx, rx); err != nil {
			return err
		}
		rec := &records.MedicalRecord{
			PatientID: rx.PatientID,
			DoctorID:  &rx.DoctorID,
			Date:      rx.Date,
			Type:      records.TypeConsultation,
			Diagnosis: &rx.Diagnosis,
			Treatment: &treatment,
		}
		if err := s.records.Create(ctx, rec); err != nil {
			return err
		}
		if err := s.consultations.LinkPrescription(ctx, consultationID, rx.ID); err != nil {
			return err
		}
		return s.orders.Create(ctx, &pharmacy.PrescriptionOrder{
			PrescriptionID: rx.ID,
			PatientID:      rx.PatientID,
			Status:         pharmacy.StatusPending,
		})
	})
}

// Get returns a prescription. Patients and doctors see their own;
// pharmacists and admins see any.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Prescription, error) {
	rx, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin(), actor.Role == auth.RolePharmacist:
		return rx, nil
	case actor.ID == rx.PatientID, actor.ID == rx.DoctorID:
		return rx, nil
	}
	return nil, ErrNotFound
}

// ListForActor returns the prescriptions visible to the actor. Pharmacists
// see the full list so they can dispense against any order.
func (s *Service) ListForActor(ctx context.Context, actor auth.Actor, limit, offset int) ([]*Prescription, int, error) {
	switch actor.Role {
	case auth.RolePatient:
		return s.prescriptions.ListByPatient(ctx, actor.ID, limit, offset)
	case auth.RoleDoctor:
		return s.prescriptions.ListByDoctor(ctx, actor.ID, limit, offset)
	case auth.RolePharmacist, auth.RoleAdmin:
		return s.prescriptions.List(ctx, limit, offset)
	default:
		return nil, 0, fmt.Errorf("role %s cannot list prescriptions", actor.Role)
	}
}
