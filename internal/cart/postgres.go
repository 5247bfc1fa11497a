package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresPersister keeps one row per cart key in cart_snapshots. Saves
// overwrite the whole snapshot, so concurrent writers resolve as
// last-write-wins.
type PostgresPersister struct {
	pool DBPool
}

func NewPostgresPersister(pool DBPool) *PostgresPersister {
	return &PostgresPersister{pool: pool}
}

func (p *PostgresPersister) Load(ctx context.Context, key string) (State, bool, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM cart_snapshots WHERE key=$1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("select cart snapshot: %w", err)
	}
	s, err := decodeSnapshot(data)
	if err != nil {
		return State{}, false, err
	}
	return s, true, nil
}

func (p *PostgresPersister) Save(ctx context.Context, key string, s State) error {
	data, err := encodeSnapshot(s)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO cart_snapshots(key, data)
		VALUES($1, $2)
		ON CONFLICT (key) DO UPDATE SET data=EXCLUDED.data, updated_at=now()
	`, key, data)
	if err != nil {
		return fmt.Errorf("upsert cart snapshot: %w", err)
	}
	return nil
}
