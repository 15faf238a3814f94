package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/medisphere/portal/internal/platform/auth"
)

type Service struct {
	users  UserRepository
	refs   ReferenceChecker
	issuer *auth.TokenIssuer
}

func NewService(users UserRepository, refs ReferenceChecker, issuer *auth.TokenIssuer) *Service {
	return &Service{users: users, refs: refs, issuer: issuer}
}

var validRoles = map[string]bool{
	auth.RoleAdmin: true, auth.RoleDoctor: true,
	auth.RolePatient: true, auth.RolePharmacist: true,
}

// Login matches the submitted credentials against the stored ones.
// Matching is exact and case sensitive on both email and password.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err == ErrNotFound {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if u.Password != password {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Signup registers a new account and signs it in.
func (s *Service) Signup(ctx context.Context, u *User) (string, error) {
	if strings.TrimSpace(u.Email) == "" {
		return "", fmt.Errorf("email is required")
	}
	if u.Password == "" {
		return "", fmt.Errorf("password is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return "", fmt.Errorf("name is required")
	}
	if !validRoles[u.Role] {
		return "", fmt.Errorf("invalid role: %s", u.Role)
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	return s.issuer.Issue(u.ID, u.Role)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns users, optionally filtered by role.
func (s *Service) List(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	if role != "" {
		if !validRoles[role] {
			return nil, 0, fmt.Errorf("invalid role: %s", role)
		}
		return s.users.ListByRole(ctx, role, limit, offset)
	}
	return s.users.List(ctx, limit, offset)
}

// ListForActor applies the directory visibility rules to a user listing.
// Admins see everyone, pharmacists see the patients whose prescriptions
// they handle, and everyone else sees the doctor directory needed to book
// an appointment. Any other role filter is denied.
func (s *Service) ListForActor(ctx context.Context, actor auth.Actor, role string, limit, offset int) ([]*User, int, error) {
	switch actor.Role {
	case auth.RoleAdmin:
		return s.List(ctx, role, limit, offset)
	case auth.RolePharmacist:
		if role != "" && role != auth.RolePatient {
			return nil, 0, ErrForbidden
		}
		return s.List(ctx, auth.RolePatient, limit, offset)
	case auth.RolePatient, auth.RoleDoctor:
		if role != "" && role != auth.RoleDoctor {
			return nil, 0, ErrForbidden
		}
		return s.List(ctx, auth.RoleDoctor, limit, offset)
	}
	return nil, 0, ErrForbidden
}

// GetForActor fetches a single user subject to the same visibility rules:
// everyone sees themselves, admins see everyone, pharmacists see patients,
// and doctor profiles are visible to any signed-in user.
func (s *Service) GetForActor(ctx context.Context, actor auth.Actor, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin(), actor.ID == id:
		return u, nil
	case actor.Role == auth.RolePharmacist && u.Role == auth.RolePatient:
		return u, nil
	case u.Role == auth.RoleDoctor:
		return u, nil
	}
	return nil, ErrForbidden
}

// PatientsSeenBy returns the distinct patients a doctor has appointments with.
func (s *Service) PatientsSeenBy(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*User, int, error) {
	return s.users.ListPatientsSeenBy(ctx, doctorID, limit, offset)
}

// Update applies a partial profile update. Email and role are immutable.
func (s *Service) Update(ctx context.Context, id uuid.UUID, upd *UserUpdate) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}
	if upd.Password != nil && *upd.Password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}
	upd.Apply(u)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user. Admins cannot delete themselves, and a user that
// clinical records still reference is kept.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if actor.ID == id {
		return fmt.Errorf("cannot delete your own account")
	}
	referenced, err := s.refs.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return ErrUserReferenced
	}
	return s.users.Delete(ctx, id)
}
