package order

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("order not found")

// Service scopes order reads to their owner.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetForUser returns ErrNotFound both for missing orders and for orders
// owned by someone else.
func (s *Service) GetForUser(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil || o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}
