package seed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/medisphere/portal/internal/domain/consultation"
	"github.com/medisphere/portal/internal/domain/identity"
	"github.com/medisphere/portal/internal/domain/pharmacy"
	"github.com/medisphere/portal/internal/domain/prescribing"
	"github.com/medisphere/portal/internal/domain/records"
	"github.com/medisphere/portal/internal/domain/scheduling"
	"github.com/medisphere/portal/internal/platform/auth"
)

// Seeder provisions the demo accounts and, on an empty database, a small
// sample clinical dataset so the portal is explorable out of the box.
type Seeder struct {
	users         identity.UserRepository
	appointments  scheduling.AppointmentRepository
	consultations consultation.ConsultationRepository
	prescriptions prescribing.PrescriptionRepository
	records       records.MedicalRecordRepository
	orders        pharmacy.OrderRepository
	log           zerolog.Logger
}

func New(
	users identity.UserRepository,
	appointments scheduling.AppointmentRepository,
	consultations consultation.ConsultationRepository,
	prescriptions prescribing.PrescriptionRepository,
	recs records.MedicalRecordRepository,
	orders pharmacy.OrderRepository,
	log zerolog.Logger,
) *Seeder {
	return &Seeder{
		users:         users,
		appointments:  appointments,
		consultations: consultations,
		prescriptions: prescriptions,
		records:       recs,
		orders:        orders,
		log:           log,
	}
}

func str(s string) *string { return &s }

func date(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func demoAccounts() []*identity.User {
	return []*identity.User{
		{
			Email:    "admin@medisphere.com",
			Password: "admin123",
			Name:     "System Admin",
			Role:     auth.RoleAdmin,
		},
		{
			Email:         "doctor@medisphere.com",
			Password:      "doctor123",
			Name:          "Dr. Sarah Johnson",
			Role:          auth.RoleDoctor,
			Specialty:     str("General Medicine"),
			LicenseNumber: str("MD-12345"),
		},
		{
			Email:       "patient@medisphere.com",
			Password:    "patient123",
			Name:        "John Smith",
			Role:        auth.RolePatient,
			DateOfBirth: date("1990-05-20"),
			BloodType:   str("O+"),
			Allergies:   []string{"Penicillin"},
			Phone:       str("555-0123"),
			Address:     str("123 Main Street, Springfield"),
		},
		{
			Email:         "pharmacist@medisphere.com",
			Password:      "pharm123",
			Name:          "Mike Williams",
			Role:          auth.RolePharmacist,
			LicenseNumber: str("RPH-67890"),
			Pharmacy:      str("MediCare Pharmacy"),
		},
	}
}

// Run is idempotent: accounts are matched by email and never duplicated,
// and the sample dataset is only written while the patient has no history.
func (s *Seeder) Run(ctx context.Context) error {
	var doctor, patient *identity.User
	for _, account := range demoAccounts() {
		existing, err := s.users.GetByEmail(ctx, account.Email)
		switch err {
		case nil:
			account = existing
		case identity.ErrNotFound:
			if err := s.users.Create(ctx, account); err != nil {
				return err
			}
			s.log.Info().Str("email", account.Email).Str("role", account.Role).Msg("seeded demo account")
		default:
			return err
		}
		switch account.Role {
		case auth.RoleDoctor:
			doctor = account
		case auth.RolePatient:
			patient = account
		}
	}

	_, existing, err := s.appointments.ListByPatient(ctx, patient.ID, 1, 0)
	if err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}
	return s.sampleDataset(ctx, doctor, patient)
}

// sampleDataset mirrors a short treatment history: one finished visit with
// a prescription working through the pharmacy, one lab report on file and
// one upcoming appointment.
func (s *Seeder) sampleDataset(ctx context.Context, doctor, patient *identity.User) error {
	past := time.Now().AddDate(0, 0, -14)
	upcoming := time.Now().AddDate(0, 0, 7)

	done := &scheduling.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      past,
		Time:      "09:30",
		Status:    scheduling.StatusCompleted,
		Type:      "in-person",
		Symptoms:  "Persistent cough, mild fever",
	}
	if err := s.appointments.Create(ctx, done); err != nil {
		return err
	}

	start := past.Add(9*time.Hour + 30*time.Minute)
	end := start.Add(25 * time.Minute)
	visit := &consultation.Consultation{
		AppointmentID: done.ID,
		PatientID:     patient.ID,
		DoctorID:      doctor.ID,
		StartTime:     start,
		EndTime:       &end,
		Status:        consultation.StatusCompleted,
		Notes:         "Chest clear, throat inflamed. Follow up if symptoms persist beyond a week.",
	}
	if err := s.consultations.Create(ctx, visit); err != nil {
		return err
	}

	rx := &prescribing.Prescription{
		PatientID:     patient.ID,
		DoctorID:      doctor.ID,
		AppointmentID: &done.ID,
		Date:          past,
		Diagnosis:     "Acute bronchitis",
		Status:        prescribing.StatusActive,
		Medications: []prescribing.Medication{
			{Name: "Amoxicillin", Dosage: "500mg", Frequency: "three times daily", Duration: "7 days", Instructions: "Take with food"},
			{Name: "Dextromethorphan", Dosage: "20mg", Frequency: "every 6 hours as needed", Duration: "5 days"},
		},
	}
	if err := s.prescriptions.Create(ctx, rx); err != nil {
		return err
	}
	if err := s.consultations.LinkPrescription(ctx, visit.ID, rx.ID); err != nil {
		return err
	}
	if err := s.orders.Create(ctx, &pharmacy.PrescriptionOrder{
		PrescriptionID: rx.ID,
		PatientID:      patient.ID,
		Status:         pharmacy.StatusPending,
	}); err != nil {
		return err
	}

	if err := s.records.Create(ctx, &records.MedicalRecord{
		PatientID: patient.ID,
		DoctorID:  &doctor.ID,
		Date:      past,
		Type:      records.TypeConsultation,
		Diagnosis: str("Acute bronchitis"),
		Treatment: str("Amoxicillin, Dextromethorphan"),
		Notes:     str("Chest clear, throat inflamed."),
	}); err != nil {
		return err
	}
	if err := s.records.Create(ctx, &records.MedicalRecord{
		PatientID: patient.ID,
		DoctorID:  &doctor.ID,
		Date:      past.AddDate(0, 0, 2),
		Type:      records.TypeLabReport,
		TestName:  str("Complete Blood Count"),
		Results: map[string]string{
			"hemoglobin": "14.2 g/dL",
			"wbc":        "11.3 x10^9/L",
			"platelets":  "250 x10^9/L",
		},
		Status:  str("completed"),
		LabName: str("Springfield Diagnostics"),
	}); err != nil {
		return err
	}

	if err := s.appointments.Create(ctx, &scheduling.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      upcoming,
		Time:      "14:00",
		Status:    scheduling.StatusScheduled,
		Type:      "in-person",
		Symptoms:  "Follow-up visit",
	}); err != nil {
		return err
	}

	s.log.Info().
		Str("patient", patient.Email).
		Str("doctor", doctor.Email).
		Msg("seeded sample clinical dataset")
	return nil
}
