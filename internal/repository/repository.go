package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"orders-service/internal/model"
	"orders-service/internal/service"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same methods
// serve plain reads and transaction-scoped writes.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres implementation
type PostgresOrderRepository struct {
	pool *pgxpool.Pool
	q    querier
}

func NewPostgresOrderRepository(pool *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool, q: pool}
}

// InTx runs fn against a repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise, so a
// failed write never leaves a partial row behind.
func (r *PostgresOrderRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx service.OrderStore) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	scoped := &PostgresOrderRepository{pool: r.pool, q: tx}
	if err := fn(ctx, scoped); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresOrderRepository) Insert(ctx context.Context, o *model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `INSERT INTO orders (id, items, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)`, o.ID, items, string(o.Status), o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *PostgresOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	row := r.q.QueryRow(ctx, `SELECT id, items, status, created_at, updated_at
        FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresOrderRepository) FindAll(ctx context.Context) ([]model.Order, error) {
	rows, err := r.q.Query(ctx, `SELECT id, items, status, created_at, updated_at
        FROM orders ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PostgresOrderRepository) Update(ctx context.Context, o *model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `UPDATE orders SET items = $2, status = $3, updated_at = $4
        WHERE id = $1`, o.ID, items, string(o.Status), o.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %q vanished mid-update", o.ID)
	}
	return nil
}

func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return err
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o      model.Order
		items  []byte
		status string
	)
	if err := row.Scan(&o.ID, &items, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	o.Status = model.Status(status)
	return &o, nil
}

var _ service.OrderRepository = (*PostgresOrderRepository)(nil)

// EnsureSchema creates the orders table and its status index if absent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS orders (
  id text PRIMARY KEY,
  items jsonb NOT NULL,
  status text NOT NULL,
  created_at timestamptz NOT NULL,
  updated_at timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (status);
`)
	return err
}
