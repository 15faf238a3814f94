package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/medisphere/portal/internal/platform/auth"
)

type Service struct {
	records MedicalRecordRepository
}

func NewService(records MedicalRecordRepository) *Service {
	return &Service{records: records}
}

// AddLabReport files a lab report for a patient the doctor has seen.
func (s *Service) AddLabReport(ctx context.Context, actor auth.Actor, rec *MedicalRecord) error {
	if rec.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if rec.TestName == nil || strings.TrimSpace(*rec.TestName) == "" {
		return fmt.Errorf("test_name is required")
	}

	seen, err := s.records.DoctorHasPatient(ctx, actor.ID, rec.PatientID)
	if err != nil {
		return err
	}
	if !seen {
		return fmt.Errorf("patient is not under your care")
	}

	rec.Type = TypeLabReport
	rec.DoctorID = &actor.ID
	return s.records.Create(ctx, rec)
}

// Get returns a record, restricted to its patient, its author and admins.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*MedicalRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || actor.ID == rec.PatientID {
		return rec, nil
	}
	if rec.DoctorID != nil && actor.ID == *rec.DoctorID {
		return rec, nil
	}
	if actor.Role == auth.RoleDoctor {
		seen, err := s.records.DoctorHasPatient(ctx, actor.ID, rec.PatientID)
		if err != nil {
			return nil, err
		}
		if seen {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

// ListForActor returns the records visible to the actor.
func (s *Service) ListForActor(ctx context.Context, actor auth.Actor, limit, offset int) ([]*MedicalRecord, int, error) {
	switch actor.Role {
	case auth.RolePatient:
		return s.records.ListByPatient(ctx, actor.ID, limit, offset)
	case auth.RoleDoctor:
		return s.records.ListByDoctor(ctx, actor.ID, limit, offset)
	case auth.RoleAdmin:
		return s.records.List(ctx, limit, offset)
	default:
		return nil, 0, fmt.Errorf("role %s cannot list medical records", actor.Role)
	}
}

// ListForPatient returns a patient's history for a doctor who has seen them.
func (s *Service) ListForPatient(ctx context.Context, actor auth.Actor, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	if !actor.IsAdmin() && actor.ID != patientID {
		seen, err := s.records.DoctorHasPatient(ctx, actor.ID, patientID)
		if err != nil {
			return nil, 0, err
		}
		if !seen {
			return nil, 0, fmt.Errorf("patient is not under your care")
		}
	}
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}
