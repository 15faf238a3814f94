package prescribing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medisphere/portal/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const rxCols = `id, patient_id, doctor_id, appointment_id, date, diagnosis, status,
	pharmacist_id, created_at, updated_at`

func (r *prescriptionRepoPG) scanPrescription(row pgx.Row) (*Prescription, error) {
	var rx Prescription
	err := row.Scan(&rx.ID, &rx.PatientID, &rx.DoctorID, &rx.AppointmentID, &rx.Date, &rx.Diagnosis,
		&rx.Status, &rx.PharmacistID, &rx.CreatedAt, &rx.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rx, err
}

func (r *prescriptionRepoPG) Create(ctx context.Context, rx *Prescription) error {
	if rx.ID == uuid.Nil {
		rx.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, appointment_id, date, diagnosis, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rx.ID, rx.PatientID, rx.DoctorID, rx.AppointmentID, rx.Date, rx.Diagnosis, rx.Status)
	if err != nil {
		return err
	}
	for i := range rx.Medications {
		m := &rx.Medications[i]
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.PrescriptionID = rx.ID
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO prescription_medications (id, prescription_id, name, dosage, frequency, duration, instructions, sort_order)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			m.ID, m.PrescriptionID, m.Name, m.Dosage, m.Frequency, m.Duration, m.Instructions, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *prescriptionRepoPG) loadMedications(ctx context.Context, rx *Prescription) error {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, prescription_id, name, dosage, frequency, duration, instructions
		FROM prescription_medications WHERE prescription_id = $1 ORDER BY sort_order`, rx.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.ID, &m.PrescriptionID, &m.Name, &m.Dosage, &m.Frequency, &m.Duration, &m.Instructions); err != nil {
			return err
		}
		rx.Medications = append(rx.Medications, m)
	}
	return nil
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	rx, err := r.scanPrescription(r.conn(ctx).QueryRow(ctx, `SELECT `+rxCols+` FROM prescriptions WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadMedications(ctx, rx); err != nil {
		return nil, err
	}
	return rx, nil
}

func (r *prescriptionRepoPG) collect(ctx context.Context, rows pgx.Rows) ([]*Prescription, error) {
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		rx, err := r.scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rx)
	}
	rows.Close()
	for _, rx := range items {
		if err := r.loadMedications(ctx, rx); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *prescriptionRepoPG) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+rxCols+` FROM prescriptions ORDER BY date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(ctx, rows)
	return items, total, err
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+rxCols+` FROM prescriptions WHERE patient_id = $1 ORDER BY date DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(ctx, rows)
	return items, total, err
}

func (r *prescriptionRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+rxCols+` FROM prescriptions WHERE doctor_id = $1 ORDER BY date DESC LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(ctx, rows)
	return items, total, err
}

func (r *prescriptionRepoPG) MarkFilled(ctx context.Context, prescriptionID, pharmacistID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions SET status=$2, pharmacist_id=$3, updated_at=NOW()
		WHERE id = $1`,
		prescriptionID, StatusFilled, pharmacistID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
