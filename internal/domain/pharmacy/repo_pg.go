package pharmacy

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

type orderRepoPG struct{ pool *pgxpool.Pool }

func NewOrderRepoPG(pool *pgxpool.Pool) OrderRepository {
	return &orderRepoPG{pool: pool}
}

func (r *orderRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const orderCols = `id, prescription_id, patient_id, pharmacist_id, status, ordered_at,
	processed_at, notes, updated_at`

func (r *orderRepoPG) scanOrder(row pgx.Row) (*PrescriptionOrder, error) {
	var o PrescriptionOrder
	err := row.Scan(&o.ID, &o.PrescriptionID, &o.PatientID, &o.PharmacistID, &o.Status, &o.OrderedAt,
		&o.ProcessedAt, &o.Notes, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *orderRepoPG) Create(ctx context.Context, o *PrescriptionOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription_orders (id, prescription_id, patient_id, pharmacist_id, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		o.ID, o.PrescriptionID, o.PatientID, o.PharmacistID, o.Status, o.Notes)
	return err
}

func (r *orderRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PrescriptionOrder, error) {
	return r.scanOrder(r.conn(ctx).QueryRow(ctx, `SELECT `+orderCols+` FROM prescription_orders WHERE id = $1`, id))
}

func (r *orderRepoPG) Update(ctx context.Context, o *PrescriptionOrder) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription_orders SET pharmacist_id=$2, status=$3, processed_at=$4, notes=$5, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.PharmacistID, o.Status, o.ProcessedAt, o.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepoPG) collect(rows pgx.Rows) ([]*PrescriptionOrder, error) {
	defer rows.Close()
	var items []*PrescriptionOrder
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, nil
}

func (r *orderRepoPG) List(ctx context.Context, limit, offset int) ([]*PrescriptionOrder, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescription_orders`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+orderCols+` FROM prescription_orders ORDER BY ordered_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *orderRepoPG) ListForPharmacist(ctx context.Context, pharmacistID uuid.UUID, limit, offset int) ([]*PrescriptionOrder, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM prescription_orders WHERE pharmacist_id = $1 OR pharmacist_id IS NULL`,
		pharmacistID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+orderCols+` FROM prescription_orders
		WHERE pharmacist_id = $1 OR pharmacist_id IS NULL
		ORDER BY ordered_at DESC LIMIT $2 OFFSET $3`, pharmacistID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *orderRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PrescriptionOrder, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescription_orders WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+orderCols+` FROM prescription_orders WHERE patient_id = $1 ORDER BY ordered_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}
