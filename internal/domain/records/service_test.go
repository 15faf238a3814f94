package records

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medisphere/portal/internal/platform/auth"
)

// ── Mock Repository ──

type patientPair struct {
	doctorID, patientID uuid.UUID
}

type mockRecordRepo struct {
	data  map[uuid.UUID]*MedicalRecord
	pairs map[patientPair]bool
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{
		data:  map[uuid.UUID]*MedicalRecord{},
		pairs: map[patientPair]bool{},
	}
}

func (m *mockRecordRepo) Create(_ context.Context, rec *MedicalRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	m.data[rec.ID] = rec
	return nil
}
func (m *mockRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	if rec, ok := m.data[id]; ok {
		return rec, nil
	}
	return nil, ErrNotFound
}
func (m *mockRecordRepo) List(_ context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	var out []*MedicalRecord
	for _, rec := range m.data {
		out = append(out, rec)
	}
	return out, len(out), nil
}
func (m *mockRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var out []*MedicalRecord
	for _, rec := range m.data {
		if rec.PatientID == patientID {
			out = append(out, rec)
		}
	}
	return out, len(out), nil
}
func (m *mockRecordRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var out []*MedicalRecord
	for _, rec := range m.data {
		if rec.DoctorID != nil && *rec.DoctorID == doctorID {
			out = append(out, rec)
		}
	}
	return out, len(out), nil
}
func (m *mockRecordRepo) DoctorHasPatient(_ context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	return m.pairs[patientPair{doctorID, patientID}], nil
}

// ── Lab Report Tests ──

func TestAddLabReport_Success(t *testing.T) {
	repo := newMockRecordRepo()
	svc := NewService(repo)
	doctorID, patientID := uuid.New(), uuid.New()
	repo.pairs[patientPair{doctorID, patientID}] = true

	name := "Complete Blood Count"
	rec := &MedicalRecord{
		PatientID: patientID,
		Date:      time.Now(),
		TestName:  &name,
		Results:   map[string]string{"hemoglobin": "14.2 g/dL"},
	}
	err := svc.AddLabReport(context.Background(), auth.Actor{ID: doctorID, Role: auth.RoleDoctor}, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Type != TypeLabReport {
		t.Errorf("expected type lab_report, got %s", rec.Type)
	}
	if rec.DoctorID == nil || *rec.DoctorID != doctorID {
		t.Error("expected the filing doctor recorded on the report")
	}
}

func TestAddLabReport_NotMyPatient(t *testing.T) {
	svc := NewService(newMockRecordRepo())
	name := "CBC"
	rec := &MedicalRecord{PatientID: uuid.New(), Date: time.Now(), TestName: &name}
	err := svc.AddLabReport(context.Background(), auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}, rec)
	if err == nil {
		t.Fatal("expected error for patient outside doctor's care")
	}
}

func TestAddLabReport_MissingTestName(t *testing.T) {
	repo := newMockRecordRepo()
	svc := NewService(repo)
	doctorID, patientID := uuid.New(), uuid.New()
	repo.pairs[patientPair{doctorID, patientID}] = true

	rec := &MedicalRecord{PatientID: patientID, Date: time.Now()}
	if err := svc.AddLabReport(context.Background(), auth.Actor{ID: doctorID, Role: auth.RoleDoctor}, rec); err == nil {
		t.Fatal("expected error for missing test name")
	}
}

// ── Visibility Tests ──

func TestGet_Scoping(t *testing.T) {
	repo := newMockRecordRepo()
	svc := NewService(repo)
	doctorID, patientID := uuid.New(), uuid.New()
	repo.pairs[patientPair{doctorID, patientID}] = true

	diag := "Hypertension"
	rec := &MedicalRecord{PatientID: patientID, DoctorID: &doctorID, Date: time.Now(), Type: TypeConsultation, Diagnosis: &diag}
	repo.Create(context.Background(), rec)

	if _, err := svc.Get(context.Background(), auth.Actor{ID: patientID, Role: auth.RolePatient}, rec.ID); err != nil {
		t.Errorf("patient read failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), auth.Actor{ID: doctorID, Role: auth.RoleDoctor}, rec.ID); err != nil {
		t.Errorf("author read failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}, rec.ID); err != nil {
		t.Errorf("admin read failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), auth.Actor{ID: uuid.New(), Role: auth.RolePatient}, rec.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for other patient, got %v", err)
	}
	if _, err := svc.Get(context.Background(), auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}, rec.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for unrelated doctor, got %v", err)
	}
}

func TestListForPatient_RequiresCareRelationship(t *testing.T) {
	repo := newMockRecordRepo()
	svc := NewService(repo)
	doctorID, patientID := uuid.New(), uuid.New()
	repo.Create(context.Background(), &MedicalRecord{PatientID: patientID, Date: time.Now(), Type: TypeConsultation})

	_, _, err := svc.ListForPatient(context.Background(), auth.Actor{ID: doctorID, Role: auth.RoleDoctor}, patientID, 20, 0)
	if err == nil {
		t.Fatal("expected error before any appointment exists")
	}

	repo.pairs[patientPair{doctorID, patientID}] = true
	items, _, err := svc.ListForPatient(context.Background(), auth.Actor{ID: doctorID, Role: auth.RoleDoctor}, patientID, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 record, got %d", len(items))
	}
}
