// AngelaMos | 2026
// repository.go

package giftcard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

type Repository interface {
	Credit(ctx context.Context, userID string, card Card, allowRepeat bool) (int, error)
}

type repository struct {
	db core.TxStarter
}

func NewRepository(db core.TxStarter) Repository {
	return &repository{db: db}
}

// Credit records the redemption and adds the card's points in one
// transaction. Unless allowRepeat is set, a second redemption of the same
// code by the same user fails with ErrConflict.
func (r *repository) Credit(
	ctx context.Context,
	userID string,
	card Card,
	allowRepeat bool,
) (int, error) {
	var balance int

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &balance, `
			UPDATE users
			SET points = points + $2, updated_at = NOW()
			WHERE id = $1
			RETURNING points`,
			userID, card.Points)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("credit gift card: %w", core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("credit gift card: %w", err)
		}

		insert := `
			INSERT INTO gift_card_redemptions (user_id, code, points)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, code) DO NOTHING`
		if allowRepeat {
			insert = `
				INSERT INTO gift_card_redemptions (user_id, code, points)
				VALUES ($1, $2, $3)
				ON CONFLICT (user_id, code)
				DO UPDATE SET points = gift_card_redemptions.points + EXCLUDED.points,
					redeemed_at = NOW()`
		}

		result, err := tx.ExecContext(ctx, insert, userID, card.Code, card.Points)
		if err != nil {
			return fmt.Errorf("record redemption: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("record redemption: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("record redemption: %w", core.ErrConflict)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return balance, nil
}
