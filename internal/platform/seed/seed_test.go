package seed

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medisphere/portal/internal/domain/consultation"
	"github.com/medisphere/portal/internal/domain/identity"
	"github.com/medisphere/portal/internal/domain/pharmacy"
	"github.com/medisphere/portal/internal/domain/prescribing"
	"github.com/medisphere/portal/internal/domain/records"
	"github.com/medisphere/portal/internal/domain/scheduling"
	"github.com/medisphere/portal/internal/platform/auth"
)

// The mocks embed their interface so only the methods the seeder touches
// need real implementations.

type seedUserRepo struct {
	identity.UserRepository
	byEmail map[string]*identity.User
}

func (m *seedUserRepo) Create(_ context.Context, u *identity.User) error {
	u.ID = uuid.New()
	m.byEmail[u.Email] = u
	return nil
}

func (m *seedUserRepo) GetByEmail(_ context.Context, email string) (*identity.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return u, nil
}

type seedApptRepo struct {
	scheduling.AppointmentRepository
	appts []*scheduling.Appointment
}

func (m *seedApptRepo) Create(_ context.Context, a *scheduling.Appointment) error {
	a.ID = uuid.New()
	m.appts = append(m.appts, a)
	return nil
}

func (m *seedApptRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*scheduling.Appointment, int, error) {
	var out []*scheduling.Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

type seedConsultRepo struct {
	consultation.ConsultationRepository
	consults []*consultation.Consultation
	links    int
}

func (m *seedConsultRepo) Create(_ context.Context, c *consultation.Consultation) error {
	c.ID = uuid.New()
	m.consults = append(m.consults, c)
	return nil
}

func (m *seedConsultRepo) LinkPrescription(_ context.Context, _, _ uuid.UUID) error {
	m.links++
	return nil
}

type seedRxRepo struct {
	prescribing.PrescriptionRepository
	rxs []*prescribing.Prescription
}

func (m *seedRxRepo) Create(_ context.Context, rx *prescribing.Prescription) error {
	rx.ID = uuid.New()
	m.rxs = append(m.rxs, rx)
	return nil
}

type seedRecordRepo struct {
	records.MedicalRecordRepository
	recs []*records.MedicalRecord
}

func (m *seedRecordRepo) Create(_ context.Context, rec *records.MedicalRecord) error {
	rec.ID = uuid.New()
	m.recs = append(m.recs, rec)
	return nil
}

type seedOrderRepo struct {
	pharmacy.OrderRepository
	orders []*pharmacy.PrescriptionOrder
}

func (m *seedOrderRepo) Create(_ context.Context, o *pharmacy.PrescriptionOrder) error {
	o.ID = uuid.New()
	m.orders = append(m.orders, o)
	return nil
}

type fixture struct {
	users    *seedUserRepo
	appts    *seedApptRepo
	consults *seedConsultRepo
	rxs      *seedRxRepo
	recs     *seedRecordRepo
	orders   *seedOrderRepo
	seeder   *Seeder
}

func newFixture() *fixture {
	f := &fixture{
		users:    &seedUserRepo{byEmail: make(map[string]*identity.User)},
		appts:    &seedApptRepo{},
		consults: &seedConsultRepo{},
		rxs:      &seedRxRepo{},
		recs:     &seedRecordRepo{},
		orders:   &seedOrderRepo{},
	}
	f.seeder = New(f.users, f.appts, f.consults, f.rxs, f.recs, f.orders, zerolog.Nop())
	return f
}

func TestRun_CreatesDemoAccounts(t *testing.T) {
	f := newFixture()

	if err := f.seeder.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.users.byEmail) != 4 {
		t.Fatalf("expected 4 demo accounts, got %d", len(f.users.byEmail))
	}
	for email, role := range map[string]string{
		"admin@medisphere.com":      auth.RoleAdmin,
		"doctor@medisphere.com":     auth.RoleDoctor,
		"patient@medisphere.com":    auth.RolePatient,
		"pharmacist@medisphere.com": auth.RolePharmacist,
	} {
		u, ok := f.users.byEmail[email]
		if !ok {
			t.Fatalf("missing demo account %s", email)
		}
		if u.Role != role {
			t.Errorf("%s: expected role %s, got %s", email, role, u.Role)
		}
	}
}

func TestRun_WritesSampleDataset(t *testing.T) {
	f := newFixture()

	if err := f.seeder.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.appts.appts) != 2 {
		t.Errorf("expected 2 appointments, got %d", len(f.appts.appts))
	}
	if len(f.consults.consults) != 1 {
		t.Errorf("expected 1 consultation, got %d", len(f.consults.consults))
	}
	if len(f.rxs.rxs) != 1 {
		t.Errorf("expected 1 prescription, got %d", len(f.rxs.rxs))
	}
	if f.consults.links != 1 {
		t.Errorf("expected prescription linked to consultation, links=%d", f.consults.links)
	}
	if len(f.recs.recs) != 2 {
		t.Errorf("expected 2 medical records, got %d", len(f.recs.recs))
	}
	if len(f.orders.orders) != 1 {
		t.Fatalf("expected 1 pharmacy order, got %d", len(f.orders.orders))
	}
	if f.orders.orders[0].Status != pharmacy.StatusPending {
		t.Errorf("expected pending order, got %s", f.orders.orders[0].Status)
	}
	if f.orders.orders[0].Claimed() {
		t.Error("seeded order should be unclaimed")
	}
}

func TestRun_Idempotent(t *testing.T) {
	f := newFixture()

	if err := f.seeder.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := f.seeder.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(f.users.byEmail) != 4 {
		t.Errorf("expected 4 demo accounts after rerun, got %d", len(f.users.byEmail))
	}
	if len(f.appts.appts) != 2 {
		t.Errorf("expected sample dataset written once, got %d appointments", len(f.appts.appts))
	}
	if len(f.rxs.rxs) != 1 {
		t.Errorf("expected sample dataset written once, got %d prescriptions", len(f.rxs.rxs))
	}
}

func TestRun_SkipsDatasetWhenPatientHasHistory(t *testing.T) {
	f := newFixture()
	patient := &identity.User{
		ID:       uuid.New(),
		Email:    "patient@medisphere.com",
		Password: "patient123",
		Name:     "John Smith",
		Role:     auth.RolePatient,
	}
	f.users.byEmail[patient.Email] = patient
	f.appts.appts = append(f.appts.appts, &scheduling.Appointment{
		ID:        uuid.New(),
		PatientID: patient.ID,
		Status:    scheduling.StatusCompleted,
	})

	if err := f.seeder.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.users.byEmail) != 4 {
		t.Errorf("expected remaining accounts created, got %d", len(f.users.byEmail))
	}
	if len(f.appts.appts) != 1 {
		t.Errorf("expected no sample appointments added, got %d", len(f.appts.appts))
	}
	if len(f.rxs.rxs) != 0 {
		t.Errorf("expected no sample prescriptions, got %d", len(f.rxs.rxs))
	}
}
