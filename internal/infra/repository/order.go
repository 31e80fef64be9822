package repository

import (
	"context"
	"log/slog"

	"ordersaga/internal/domain/order"
	"ordersaga/internal/infra"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewOrderRepository(pool *pgxpool.Pool, logger *slog.Logger) *OrderRepository {
	return &OrderRepository{pool: pool, logger: logger}
}

// Save writes the order header and its items in one transaction.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	const orderQuery = `
		INSERT INTO orders (
			id, user_id, user_coupon_id,
			total_amount_cents, discount_amount_cents, discounted_amount_cents,
			status, failure_reason, ordered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID(), o.UserID(), o.UserCouponID(),
		o.TotalAmountCents(), o.DiscountAmountCents(), o.DiscountedAmountCents(),
		string(o.Status()), nullableString(o.FailureReason()), o.OrderedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to insert order", err)
	}

	const itemQuery = `
		INSERT INTO order_items (
			order_id, product_id, product_name,
			quantity, unit_price_cents, total_price_cents
		) VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range o.Items() {
		_, err = tx.Exec(ctx, itemQuery,
			o.ID(), item.ProductID, item.ProductName,
			item.Quantity, item.UnitPriceCents, item.TotalPriceCents,
		)
		if err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to insert order item", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to commit order", err)
	}
	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
