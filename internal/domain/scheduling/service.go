package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medisphere/portal/internal/platform/auth"
)

type Service struct {
	appointments AppointmentRepository
}

func NewService(appointments AppointmentRepository) *Service {
	return &Service{appointments: appointments}
}

var validTypes = map[string]bool{
	"in-person": true, "video": true, "phone": true,
}

// Book creates a new appointment for the acting patient. New appointments
// always start out scheduled.
func (s *Service) Book(ctx context.Context, actor auth.Actor, a *Appointment) error {
	a.PatientID = actor.ID
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if _, err := time.Parse("15:04", a.Time); err != nil {
		return fmt.Errorf("time must be HH:MM")
	}
	if a.Type == "" {
		a.Type = "in-person"
	}
	if !validTypes[a.Type] {
		return fmt.Errorf("invalid appointment type: %s", a.Type)
	}

	isDoctor, err := s.appointments.DoctorExists(ctx, a.DoctorID)
	if err != nil {
		return err
	}
	if !isDoctor {
		return fmt.Errorf("doctor not found")
	}

	a.Status = StatusScheduled
	return s.appointments.Create(ctx, a)
}

// Get returns an appointment, restricted to its own patient and doctor.
// Admins may read any appointment.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != a.PatientID && actor.ID != a.DoctorID {
		return nil, ErrNotFound
	}
	return a, nil
}

// ListForActor returns the appointments visible to the actor: patients see
// their own, doctors see the ones assigned to them, admins see everything.
func (s *Service) ListForActor(ctx context.Context, actor auth.Actor, limit, offset int) ([]*Appointment, int, error) {
	switch actor.Role {
	case auth.RolePatient:
		return s.appointments.ListByPatient(ctx, actor.ID, limit, offset)
	case auth.RoleDoctor:
		return s.appointments.ListByDoctor(ctx, actor.ID, limit, offset)
	case auth.RoleAdmin:
		return s.appointments.List(ctx, limit, offset)
	default:
		return nil, 0, fmt.Errorf("role %s cannot list appointments", actor.Role)
	}
}
