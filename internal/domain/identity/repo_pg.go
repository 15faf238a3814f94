package identity

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

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id, email, password, name, role, specialty, license_number,
	date_of_birth, blood_type, allergies, pharmacy, phone, address,
	created_at, updated_at`

func (r *userRepoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.Specialty, &u.LicenseNumber,
		&u.DateOfBirth, &u.BloodType, &u.Allergies, &u.Pharmacy, &u.Phone, &u.Address,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, email, password, name, role, specialty, license_number,
			date_of_birth, blood_type, allergies, pharmacy, phone, address)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		u.ID, u.Email, u.Password, u.Name, u.Role, u.Specialty, u.LicenseNumber,
		u.DateOfBirth, u.BloodType, u.Allergies, u.Pharmacy, u.Phone, u.Address)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET password=$2, name=$3, specialty=$4, license_number=$5,
			date_of_birth=$6, blood_type=$7, allergies=$8, pharmacy=$9,
			phone=$10, address=$11, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Password, u.Name, u.Specialty, u.LicenseNumber,
		u.DateOfBirth, u.BloodType, u.Allergies, u.Pharmacy,
		u.Phone, u.Address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, nil
}

func (r *userRepoPG) ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM users WHERE role = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, role, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, nil
}

func (r *userRepoPG) ListPatientsSeenBy(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(DISTINCT u.id) FROM users u
		JOIN appointments a ON a.patient_id = u.id
		WHERE a.doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT `+prefixCols("u")+` FROM users u
		JOIN appointments a ON a.patient_id = u.id
		WHERE a.doctor_id = $1
		ORDER BY u.name LIMIT $2 OFFSET $3`, doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, nil
}

func prefixCols(alias string) string {
	return alias + `.id, ` + alias + `.email, ` + alias + `.password, ` + alias + `.name, ` +
		alias + `.role, ` + alias + `.specialty, ` + alias + `.license_number, ` +
		alias + `.date_of_birth, ` + alias + `.blood_type, ` + alias + `.allergies, ` +
		alias + `.pharmacy, ` + alias + `.phone, ` + alias + `.address, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}

// referenceCheckerPG scans the clinical tables for rows pointing at a user.
type referenceCheckerPG struct{ pool *pgxpool.Pool }

func NewReferenceCheckerPG(pool *pgxpool.Pool) ReferenceChecker {
	return &referenceCheckerPG{pool: pool}
}

func (r *referenceCheckerPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *referenceCheckerPG) IsReferenced(ctx context.Context, userID uuid.UUID) (bool, error) {
	var referenced bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM appointments WHERE patient_id = $1 OR doctor_id = $1)
			OR EXISTS (SELECT 1 FROM prescriptions WHERE patient_id = $1 OR doctor_id = $1 OR pharmacist_id = $1)
			OR EXISTS (SELECT 1 FROM medical_records WHERE patient_id = $1 OR doctor_id = $1)
			OR EXISTS (SELECT 1 FROM consultations WHERE patient_id = $1 OR doctor_id = $1)
			OR EXISTS (SELECT 1 FROM prescription_orders WHERE patient_id = $1 OR pharmacist_id = $1)`,
		userID).Scan(&referenced)
	return referenced, err
}
