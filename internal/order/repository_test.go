package order

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, user_id, cart_key, status, subtotal, tax, total_amount, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	insertItemSQL = `INSERT INTO order_items (id, order_id, product_id, title, quantity, price)
             VALUES ($1, $2, $3, $4, $5, $6)`
	selectOrderSQL = `SELECT id, user_id, cart_key, status, subtotal, tax, total_amount, created_at, updated_at
         FROM orders WHERE id = $1`
	selectItemsSQL = `SELECT product_id, title, quantity, price
         FROM order_items WHERE order_id = $1 ORDER BY created_at, id`
)

var orderCols = []string{"id", "user_id", "cart_key", "status", "subtotal", "tax", "total_amount", "created_at", "updated_at"}

func TestRepositoryCreate_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	o := &Order{
		ID:          "order-123",
		UserID:      "user_1",
		CartKey:     "cart-storage:user:user_1",
		Subtotal:    2500,
		Tax:         250,
		TotalAmount: 2750,
		CreatedAt:   now,
		Items: []Item{
			{ProductID: "p1", Title: "Go Guide", Quantity: 1, Price: 1000},
			{ProductID: "p2", Title: "SQL Guide", Quantity: 2, Price: 750},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).
		WithArgs(o.ID, o.UserID, o.CartKey, "pending", o.Subtotal, o.Tax, o.TotalAmount, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertItemSQL)).
		WithArgs(sqlmock.AnyArg(), o.ID, "p1", "Go Guide", 1, int64(1000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertItemSQL)).
		WithArgs(sqlmock.AnyArg(), o.ID, "p2", "SQL Guide", 2, int64(750)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), o))
	require.Equal(t, StatusPending, o.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_ItemInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	o := &Order{
		ID:     "order-item-err",
		UserID: "user_1",
		Items:  []Item{{ProductID: "p1", Title: "A", Quantity: 1, Price: 5}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertItemSQL)).
		WillReturnError(errors.New("item insert failed"))
	mock.ExpectRollback()

	require.Error(t, NewRepository(db).Create(context.Background(), o))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(selectOrderSQL)).
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow("order-1", "user_1", "cart-storage:user:user_1", "pending", 1000, 100, 1100, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(selectItemsSQL)).
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "quantity", "price"}).
			AddRow("p1", "Go Guide", 1, 1000))

	o, err := NewRepository(db).GetByID(context.Background(), "order-1")
	require.NoError(t, err)
	require.NotNil(t, o)
	require.Equal(t, StatusPending, o.Status)
	require.Equal(t, int64(1100), o.TotalAmount)
	require.Equal(t, []Item{{ProductID: "p1", Title: "Go Guide", Quantity: 1, Price: 1000}}, o.Items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectOrderSQL)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	o, err := NewRepository(db).GetByID(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, o)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListByUser_GroupsItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	cols := append(append([]string{}, orderCols...), "product_id", "title", "quantity", "price")
	rows := sqlmock.NewRows(cols).
		AddRow("o2", "user_1", "k", "pending", 2000, 200, 2200, now, now, "p1", "A", 2, 1000).
		AddRow("o1", "user_1", "k", "pending", 500, 50, 550, now.Add(-time.Hour), now, "p2", "B", 1, 500).
		AddRow("o1", "user_1", "k", "pending", 500, 50, 550, now.Add(-time.Hour), now, nil, nil, nil, nil).
		AddRow("o0", "user_1", "k", "cancelled", 0, 0, 0, now.Add(-2*time.Hour), now, nil, nil, nil, nil)

	mock.ExpectQuery(`FROM orders o\s+LEFT JOIN order_items oi`).
		WithArgs("user_1").
		WillReturnRows(rows)

	orders, err := NewRepository(db).ListByUser(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	require.Equal(t, "o2", orders[0].ID)
	require.Len(t, orders[0].Items, 1)
	require.Equal(t, "o1", orders[1].ID)
	require.Len(t, orders[1].Items, 1)
	require.Equal(t, StatusCancelled, orders[2].Status)
	require.Empty(t, orders[2].Items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListByUser_EmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := append(append([]string{}, orderCols...), "product_id", "title", "quantity", "price")
	mock.ExpectQuery(`FROM orders o`).
		WithArgs("user-empty").
		WillReturnRows(sqlmock.NewRows(cols))

	orders, err := NewRepository(db).ListByUser(context.Background(), "user-empty")
	require.NoError(t, err)
	require.NotNil(t, orders)
	require.Empty(t, orders)
	require.NoError(t, mock.ExpectationsWereMet())
}
