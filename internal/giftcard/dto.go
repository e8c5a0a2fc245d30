// AngelaMos | 2026
// dto.go

package giftcard

type RedeemRequest struct {
	Code string `json:"code"`
}

type CardSummary struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type RedeemResponse struct {
	GiftCard    CardSummary `json:"giftCard"`
	NewBalance  int         `json:"newBalance"`
	PointsAdded int         `json:"pointsAdded"`
}
