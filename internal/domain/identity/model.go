package identity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned when no account matches the
	// submitted email and password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrDuplicateEmail is returned when a signup reuses an existing email.
	ErrDuplicateEmail = errors.New("an account with this email already exists")

	// ErrNotFound is returned when the requested user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrUserReferenced is returned when deleting a user that clinical
	// records still point at.
	ErrUserReferenced = errors.New("user is referenced by existing records")

	// ErrForbidden is returned when the directory visibility rules deny
	// the actor access to the requested user or listing.
	ErrForbidden = errors.New("insufficient permissions")
)

// User maps to the users table. A single table serves all four roles;
// role-specific attributes are nullable and only populated where they apply.
type User struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	Password      string     `db:"password" json:"-"`
	Name          string     `db:"name" json:"name"`
	Role          string     `db:"role" json:"role"`
	Specialty     *string    `db:"specialty" json:"specialty,omitempty"`
	LicenseNumber *string    `db:"license_number" json:"license_number,omitempty"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	BloodType     *string    `db:"blood_type" json:"blood_type,omitempty"`
	Allergies     []string   `db:"allergies" json:"allergies,omitempty"`
	Pharmacy      *string    `db:"pharmacy" json:"pharmacy,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	Address       *string    `db:"address" json:"address,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// UserUpdate carries a partial profile update. Nil fields are left
// untouched. Email, role, id and timestamps are not updatable.
type UserUpdate struct {
	Name          *string    `json:"name,omitempty"`
	Password      *string    `json:"password,omitempty"`
	Specialty     *string    `json:"specialty,omitempty"`
	LicenseNumber *string    `json:"license_number,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	BloodType     *string    `json:"blood_type,omitempty"`
	Allergies     []string   `json:"allergies,omitempty"`
	Pharmacy      *string    `json:"pharmacy,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Address       *string    `json:"address,omitempty"`
}

// Apply copies the non-nil fields of the update onto the user.
func (u *UserUpdate) Apply(target *User) {
	if u.Name != nil {
		target.Name = *u.Name
	}
	if u.Password != nil {
		target.Password = *u.Password
	}
	if u.Specialty != nil {
		target.Specialty = u.Specialty
	}
	if u.LicenseNumber != nil {
		target.LicenseNumber = u.LicenseNumber
	}
	if u.DateOfBirth != nil {
		target.DateOfBirth = u.DateOfBirth
	}
	if u.BloodType != nil {
		target.BloodType = u.BloodType
	}
	if u.Allergies != nil {
		target.Allergies = u.Allergies
	}
	if u.Pharmacy != nil {
		target.Pharmacy = u.Pharmacy
	}
	if u.Phone != nil {
		target.Phone = u.Phone
	}
	if u.Address != nil {
		target.Address = u.Address
	}
}
