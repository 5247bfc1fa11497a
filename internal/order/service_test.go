package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type RepositoryMock struct {
	CreateFunc     func(ctx context.Context, o *Order) error
	GetByIDFunc    func(ctx context.Context, orderID string) (*Order, error)
	ListByUserFunc func(ctx context.Context, userID string) ([]Order, error)
}

func (m *RepositoryMock) Create(ctx context.Context, o *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	return nil
}

func (m *RepositoryMock) GetByID(ctx context.Context, orderID string) (*Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *RepositoryMock) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []Order{}, nil
}

func TestServiceGetForUser(t *testing.T) {
	repo := &RepositoryMock{
		GetByIDFunc: func(ctx context.Context, id string) (*Order, error) {
			switch id {
			case "mine":
				return &Order{ID: id, UserID: "user_1"}, nil
			case "theirs":
				return &Order{ID: id, UserID: "user_2"}, nil
			case "broken":
				return nil, errors.New("db down")
			}
			return nil, nil
		},
	}
	svc := NewService(repo)
	ctx := context.Background()

	o, err := svc.GetForUser(ctx, "user_1", "mine")
	require.NoError(t, err)
	require.Equal(t, "mine", o.ID)

	_, err = svc.GetForUser(ctx, "user_1", "theirs")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetForUser(ctx, "user_1", "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetForUser(ctx, "user_1", "broken")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestItemLineTotal(t *testing.T) {
	require.Equal(t, int64(2997), Item{Price: 999, Quantity: 3}.LineTotal())
}
