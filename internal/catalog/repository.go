package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("product not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, in ProductInput) (Product, error)
	Update(ctx context.Context, id string, in ProductInput) (Product, error)
	Delete(ctx context.Context, id string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `id, title, description, price, pdf_url, thumbnail_url, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.PDFURL, &p.ThumbnailURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Product, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if f.Query == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT `+productColumns+`
			FROM products
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, f.Limit, f.Offset)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+productColumns+`
			FROM products
			WHERE title ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, likePattern(f.Query), f.Limit, f.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, in ProductInput) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `
		INSERT INTO products(title, description, price, pdf_url, thumbnail_url)
		VALUES($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		in.Title, in.Description, in.Price, in.PDFURL, in.ThumbnailURL))
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, in ProductInput) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `
		UPDATE products
		SET title=$2, description=$3, price=$4, pdf_url=$5, thumbnail_url=$6, updated_at=now()
		WHERE id=$1
		RETURNING `+productColumns,
		id, in.Title, in.Description, in.Price, in.PDFURL, in.ThumbnailURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
