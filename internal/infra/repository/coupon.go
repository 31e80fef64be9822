package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ordersaga/internal/domain/coupon"
	"ordersaga/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CouponRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCouponRepository(pool *pgxpool.Pool, logger *slog.Logger) *CouponRepository {
	return &CouponRepository{pool: pool, logger: logger}
}

func (r *CouponRepository) FindForIssuance(ctx context.Context, couponID uuid.UUID) (*coupon.Coupon, error) {
	const query = `
		SELECT id, name, discount_amount_cents, issued_count, max_count, status
		FROM coupons
		WHERE id = $1`

	var (
		id                  uuid.UUID
		name                string
		discountAmountCents int64
		issuedCount         int32
		maxCount            int32
		status              string
	)
	err := r.pool.QueryRow(ctx, query, couponID).Scan(
		&id, &name, &discountAmountCents, &issuedCount, &maxCount, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "coupon not found", nil)
	}
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to load coupon", err)
	}

	c, err := coupon.New(id, name, discountAmountCents, issuedCount, maxCount, coupon.Status(status))
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "corrupt coupon row", err)
	}
	return c, nil
}

// SaveIssuance persists the incremented counter and the freshly issued user
// coupon atomically.
func (r *CouponRepository) SaveIssuance(ctx context.Context, c *coupon.Coupon, uc *coupon.UserCoupon) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	const couponQuery = `
		UPDATE coupons
		SET issued_count = $2, status = $3, updated_at = now()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, couponQuery, c.ID(), c.IssuedCount(), string(c.Status()))
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update coupon counter", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "coupon not found", nil)
	}

	const userCouponQuery = `
		INSERT INTO user_coupons (id, user_id, coupon_id, discount_amount_cents, issued_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = tx.Exec(ctx, userCouponQuery,
		uc.ID(), uc.UserID(), uc.CouponID(), uc.DiscountAmountCents(), uc.IssuedAt())
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to insert user coupon", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to commit issuance", err)
	}
	return nil
}

// UseCoupon marks the user coupon used and returns its discount. The
// conditional UPDATE rejects reuse without an extra read.
func (r *CouponRepository) UseCoupon(ctx context.Context, userID, userCouponID uuid.UUID, usedAt time.Time) (int64, error) {
	const query = `
		UPDATE user_coupons
		SET used_at = $3
		WHERE id = $1 AND user_id = $2 AND used_at IS NULL
		RETURNING discount_amount_cents`

	var discountCents int64
	err := r.pool.QueryRow(ctx, query, userCouponID, userID, usedAt).Scan(&discountCents)
	if err == nil {
		return discountCents, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to use coupon", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_coupons WHERE id = $1 AND user_id = $2)`,
		userCouponID, userID).Scan(&exists); err != nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to check user coupon", err)
	}
	if !exists {
		return 0, infra.WrapRepoErr(r.logger, infra.KindNotFound, "user coupon not found", nil)
	}
	return 0, infra.WrapRepoErr(r.logger, infra.KindInsufficient, "coupon already used", nil)
}

// RevertCouponUsage clears used_at so the coupon can be spent again after a
// failed order.
func (r *CouponRepository) RevertCouponUsage(ctx context.Context, userID, userCouponID uuid.UUID) error {
	const query = `
		UPDATE user_coupons
		SET used_at = NULL
		WHERE id = $1 AND user_id = $2 AND used_at IS NOT NULL`

	tag, err := r.pool.Exec(ctx, query, userCouponID, userID)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to revert coupon usage", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "no used coupon to revert", nil)
	}
	return nil
}
