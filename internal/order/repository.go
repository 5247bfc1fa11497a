package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, cart_key, status, subtotal, tax, total_amount, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.UserID, o.CartKey, string(o.Status), o.Subtotal, o.Tax, o.TotalAmount, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, title, quantity, price)
             VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), o.ID, it.ProductID, it.Title, it.Quantity, it.Price,
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *repo) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var (
		o      Order
		status string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, cart_key, status, subtotal, tax, total_amount, created_at, updated_at
         FROM orders WHERE id = $1`,
		orderID,
	).Scan(&o.ID, &o.UserID, &o.CartKey, &status, &o.Subtotal, &o.Tax, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	o.Status = Status(status)

	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, title, quantity, price
         FROM order_items WHERE order_id = $1 ORDER BY created_at, id`,
		o.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	o.Items = []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Title, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &o, nil
}

func (r *repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			o.id, o.user_id, o.cart_key, o.status, o.subtotal, o.tax, o.total_amount, o.created_at, o.updated_at,
			oi.product_id, oi.title, oi.quantity, oi.price
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id, oi.created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	index := map[string]int{}
	for rows.Next() {
		var (
			o         Order
			status    string
			productID sql.NullString
			title     sql.NullString
			quantity  sql.NullInt64
			price     sql.NullInt64
		)
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.CartKey, &status, &o.Subtotal, &o.Tax, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
			&productID, &title, &quantity, &price,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		i, ok := index[o.ID]
		if !ok {
			o.Status = Status(status)
			o.Items = []Item{}
			orders = append(orders, o)
			i = len(orders) - 1
			index[o.ID] = i
		}
		if productID.Valid {
			orders[i].Items = append(orders[i].Items, Item{
				ProductID: productID.String,
				Title:     title.String,
				Quantity:  int(quantity.Int64),
				Price:     price.Int64,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return orders, nil
}
