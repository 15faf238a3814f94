package consultation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medisphere/portal/internal/domain/scheduling"
	"github.com/medisphere/portal/internal/platform/auth"
	"github.com/medisphere/portal/internal/platform/db"
)

type Service struct {
	consultations ConsultationRepository
	appointments  scheduling.AppointmentRepository
	tx            db.TxRunner
}

func NewService(consultations ConsultationRepository, appointments scheduling.AppointmentRepository, tx db.TxRunner) *Service {
	return &Service{consultations: consultations, appointments: appointments, tx: tx}
}

// Start opens a consultation for a scheduled appointment. Only the assigned
// doctor may start it, an appointment gets at most one consultation, and the
// appointment moves to in-progress in the same unit of work.
func (s *Service) Start(ctx context.Context, actor auth.Actor, appointmentID uuid.UUID) (*Consultation, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != actor.ID {
		return nil, fmt.Errorf("appointment is assigned to another doctor")
	}
	if !scheduling.CanTransition(appt.Status, scheduling.StatusInProgress) {
		return nil, scheduling.ErrInvalidTransition
	}
	if _, err := s.consultations.GetByAppointment(ctx, appointmentID); err == nil {
		return nil, ErrConsultationExists
	} else if err != ErrNotFound {
		return nil, err
	}

	c := &Consultation{
		AppointmentID: appointmentID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		StartTime:     time.Now(),
		Status:        StatusInProgress,
	}
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.consultations.Create(ctx, c); err != nil {
			return err
		}
		return s.appointments.UpdateStatus(ctx, appointmentID, scheduling.StatusInProgress)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// End closes an in-progress consultation, records the doctor's notes and
// completes the appointment alongside it.
func (s *Service) End(ctx context.Context, actor auth.Actor, id uuid.UUID, notes string) (*Consultation, error) {
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.DoctorID != actor.ID {
		return nil, fmt.Errorf("consultation belongs to another doctor")
	}
	if c.Status != StatusInProgress {
		return nil, scheduling.ErrInvalidTransition
	}

	now := time.Now()
	c.EndTime = &now
	c.Status = StatusCompleted
	if notes != "" {
		c.Notes = notes
	}
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.consultations.Update(ctx, c); err != nil {
			return err
		}
		return s.appointments.UpdateStatus(ctx, c.AppointmentID, scheduling.StatusCompleted)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns a consultation with its linked prescriptions. Patients and
// doctors only see their own; admins see everything.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Consultation, error) {
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != c.PatientID && actor.ID != c.DoctorID {
		return nil, ErrNotFound
	}
	ids, err := s.consultations.PrescriptionIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Prescriptions = ids
	return c, nil
}

func (s *Service) ListForActor(ctx context.Context, actor auth.Actor, limit, offset int) ([]*Consultation, int, error) {
	switch actor.Role {
	case auth.RoleDoctor:
		return s.consultations.ListByDoctor(ctx, actor.ID, limit, offset)
	case auth.RolePatient:
		return s.consultations.ListByPatient(ctx, actor.ID, limit, offset)
	case auth.RoleAdmin:
		return s.consultations.List(ctx, limit, offset)
	default:
		return nil, 0, fmt.Errorf("role %s cannot list consultations", actor.Role)
	}
}
