package identity

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error)
	ListPatientsSeenBy(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*User, int, error)
}

// ReferenceChecker reports whether any clinical record still points at a
// user. Deletion is refused while references exist.
type ReferenceChecker interface {
	IsReferenced(ctx context.Context, userID uuid.UUID) (bool, error)
}
