// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

type LedgerCounts struct {
	Users               int `db:"users"          json:"users"`
	Resources           int `db:"resources"      json:"resources"`
	CouponsIssued       int `db:"coupons_issued" json:"couponsIssued"`
	CouponsUsed         int `db:"coupons_used"   json:"couponsUsed"`
	Purchases           int `db:"purchases"      json:"purchases"`
	GiftCardRedemptions int `db:"gift_cards"     json:"giftCardRedemptions"`
	PointsOutstanding   int `db:"points"         json:"pointsOutstanding"`
}

type Repository interface {
	LedgerCounts(ctx context.Context) (*LedgerCounts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) LedgerCounts(ctx context.Context) (*LedgerCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM resources) AS resources,
			(SELECT COUNT(*) FROM coupons) AS coupons_issued,
			(SELECT COUNT(*) FROM coupons WHERE used) AS coupons_used,
			(SELECT COUNT(*) FROM user_owned_resources) AS purchases,
			(SELECT COUNT(*) FROM gift_card_redemptions) AS gift_cards,
			(SELECT COALESCE(SUM(points), 0) FROM users) AS points`

	var counts LedgerCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("ledger counts: %w", err)
	}

	return &counts, nil
}
