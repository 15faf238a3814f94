package pharmacy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medisphere/portal/internal/platform/auth"
	"github.com/medisphere/portal/internal/platform/db"
)

type Service struct {
	orders OrderRepository
	filler PrescriptionFiller
	tx     db.TxRunner
}

func NewService(orders OrderRepository, filler PrescriptionFiller, tx db.TxRunner) *Service {
	return &Service{orders: orders, filler: filler, tx: tx}
}

// Claim assigns a pending, unclaimed order to the acting pharmacist.
func (s *Service) Claim(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*PrescriptionOrder, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, ErrInvalidOrderState
	}
	if o.Claimed() {
		if *o.PharmacistID == actor.ID {
			return o, nil
		}
		return nil, ErrAlreadyClaimed
	}
	o.PharmacistID = &actor.ID
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Process moves a claimed pending order to processed. Only the claiming
// pharmacist may advance it.
func (s *Service) Process(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*PrescriptionOrder, error) {
	o, err := s.claimedBy(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, ErrInvalidOrderState
	}
	now := time.Now()
	o.Status = StatusProcessed
	o.ProcessedAt = &now
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Complete finishes a processed order and marks its prescription filled in
// the same unit of work.
func (s *Service) Complete(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*PrescriptionOrder, error) {
	o, err := s.claimedBy(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusProcessed {
		return nil, ErrInvalidOrderState
	}
	o.Status = StatusCompleted
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		return s.filler.MarkFilled(ctx, o.PrescriptionID, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) claimedBy(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*PrescriptionOrder, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Claimed() {
		return nil, ErrInvalidOrderState
	}
	if *o.PharmacistID != actor.ID {
		return nil, ErrNotOrderOwner
	}
	return o, nil
}

// Get returns an order, restricted to its patient, its claiming pharmacist
// (or any pharmacist while unclaimed) and admins.
func (s *Service) Get(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*PrescriptionOrder, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
		return o, nil
	case actor.ID == o.PatientID:
		return o, nil
	case actor.Role == auth.RolePharmacist && (!o.Claimed() || *o.PharmacistID == actor.ID):
		return o, nil
	}
	return nil, ErrNotFound
}

// ListForActor returns the orders visible to the actor: pharmacists see
// their queue, patients their own orders, admins everything.
func (s *Service) ListForActor(ctx context.Context, actor auth.Actor, limit, offset int) ([]*PrescriptionOrder, int, error) {
	switch actor.Role {
	case auth.RolePharmacist:
		return s.orders.ListForPharmacist(ctx, actor.ID, limit, offset)
	case auth.RolePatient:
		return s.orders.ListByPatient(ctx, actor.ID, limit, offset)
	case auth.RoleAdmin:
		return s.orders.List(ctx, limit, offset)
	default:
		return nil, 0, fmt.Errorf("role %s cannot list prescription orders", actor.Role)
	}
}
