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

type UserRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewUserRepository(pool *pgxpool.Pool, logger *slog.Logger) *UserRepository {
	return &UserRepository{pool: pool, logger: logger}
}

func (r *UserRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to check user existence", err)
	}
	return exists, nil
}

// DeductBalance charges the user when the balance covers the amount, in one
// conditional UPDATE, and returns the remaining balance.
func (r *UserRepository) DeductBalance(ctx context.Context, userID uuid.UUID, amountCents int64) (int64, error) {
	const query = `
		UPDATE users
		SET balance_cents = balance_cents - $2, updated_at = now()
		WHERE id = $1 AND balance_cents >= $2
		RETURNING balance_cents`

	var remaining int64
	err := r.pool.QueryRow(ctx, query, userID, amountCents).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to deduct balance", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to check user existence", err)
	}
	if !exists {
		return 0, infra.WrapRepoErr(r.logger, infra.KindNotFound, "user not found", nil)
	}
	return 0, infra.WrapRepoErr(r.logger, infra.KindInsufficient, "insufficient balance", nil)
}

// RestoreBalance credits the amount back, used only by compensation.
func (r *UserRepository) RestoreBalance(ctx context.Context, userID uuid.UUID, amountCents int64) error {
	const query = `
		UPDATE users
		SET balance_cents = balance_cents + $2, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, userID, amountCents)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to restore balance", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "user not found", nil)
	}
	return nil
}
