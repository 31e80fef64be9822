package repository

import (
	"context"
	"errors"
	"log/slog"

	"ordersaga/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductSnapshot is the catalog data captured at deduction time.
type ProductSnapshot struct {
	Name       string
	PriceCents int64
}

type ProductRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewProductRepository(pool *pgxpool.Pool, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{pool: pool, logger: logger}
}

// DeductStock atomically decrements stock when enough is available. The
// conditional UPDATE is the only concurrency control the inventory needs: two
// competing orders can never drive stock below zero.
func (r *ProductRepository) DeductStock(ctx context.Context, productID uuid.UUID, quantity int32) (*ProductSnapshot, error) {
	const query = `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING name, price_cents`

	var snapshot ProductSnapshot
	err := r.pool.QueryRow(ctx, query, productID, quantity).Scan(&snapshot.Name, &snapshot.PriceCents)
	if err == nil {
		return &snapshot, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to deduct stock", err)
	}

	// No row matched: either the product does not exist or stock is short.
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to check product existence", err)
	}
	if !exists {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "product not found", nil)
	}
	return nil, infra.WrapRepoErr(r.logger, infra.KindInsufficient, "insufficient stock", nil)
}

func (r *ProductRepository) RestoreStock(ctx context.Context, productID uuid.UUID, quantity int32) error {
	const query = `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, productID, quantity)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to restore stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "product not found", nil)
	}
	return nil
}
