// AngelaMos | 2026
// repository.go

package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

var ErrExpired = errors.New("coupon expired")

type Repository interface {
	Insert(ctx context.Context, c *Coupon) error
	Redeem(ctx context.Context, code, userID string, now time.Time) (*Coupon, int, error)
}

type repository struct {
	db core.TxStarter
}

func NewRepository(db core.TxStarter) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, c *Coupon) error {
	query := `
		INSERT INTO coupons (id, code, value, used, expires_at, batch_id)
		VALUES ($1, $2, $3, FALSE, $4, $5)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &c.CreatedAt, query,
		c.ID, c.Code, c.Value, c.ExpiresAt, c.BatchID)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert coupon: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("insert coupon: %w", err)
	}

	return nil
}

// Redeem locks the coupon row, marks it used and credits its value to the
// user in one transaction. It returns the coupon and the new balance.
func (r *repository) Redeem(
	ctx context.Context,
	code, userID string,
	now time.Time,
) (*Coupon, int, error) {
	var (
		c       Coupon
		balance int
	)

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &c, `
			SELECT id, code, value, used, expires_at, batch_id, redeemed_by, used_at, created_at
			FROM coupons
			WHERE code = $1
			FOR UPDATE`, code)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("redeem coupon: %w", core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("redeem coupon: %w", err)
		}

		if c.Used {
			return fmt.Errorf("redeem coupon: %w", core.ErrConflict)
		}
		if c.IsExpired(now) {
			return fmt.Errorf("redeem coupon: %w", ErrExpired)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE coupons
			SET used = TRUE, redeemed_by = $2, used_at = $3
			WHERE id = $1`,
			c.ID, userID, now); err != nil {
			return fmt.Errorf("mark coupon used: %w", err)
		}

		err = tx.GetContext(ctx, &balance, `
			UPDATE users
			SET points = points + $2, updated_at = NOW()
			WHERE id = $1
			RETURNING points`,
			userID, c.Value)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("credit coupon: user: %w", core.ErrUnauthorized)
		}
		if err != nil {
			return fmt.Errorf("credit coupon: %w", err)
		}

		c.Used = true
		c.RedeemedBy = &userID
		c.UsedAt = &now
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return &c, balance, nil
}
