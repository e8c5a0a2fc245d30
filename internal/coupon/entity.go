// AngelaMos | 2026
// entity.go

package coupon

import (
	"time"
)

const DefaultValue = 10

type Coupon struct {
	ID         string     `db:"id"`
	Code       string     `db:"code"`
	Value      int        `db:"value"`
	Used       bool       `db:"used"`
	ExpiresAt  *time.Time `db:"expires_at"`
	BatchID    string     `db:"batch_id"`
	RedeemedBy *string    `db:"redeemed_by"`
	UsedAt     *time.Time `db:"used_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}
