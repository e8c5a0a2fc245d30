// AngelaMos | 2026
// dto.go

package coupon

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// BatchSize is the requested coupon count. Any JSON value is accepted and
// read as a loose number: numbers and numeric strings truncate toward zero,
// null and blank strings read as 0, booleans as 0 or 1, and anything
// non-numeric falls back to DefaultCount.
type BatchSize struct {
	n   int
	set bool
}

func SizeOf(n int) BatchSize { return BatchSize{n: n, set: true} }

// Value returns the parsed count, or DefaultCount when none was sent.
func (b BatchSize) Value() int {
	if !b.set {
		return DefaultCount
	}
	return b.n
}

func (b *BatchSize) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	b.set = true
	switch x := v.(type) {
	case nil:
		b.n = 0
	case bool:
		b.n = 0
		if x {
			b.n = 1
		}
	case json.Number:
		b.n = truncate(string(x))
	case string:
		if strings.TrimSpace(x) == "" {
			b.n = 0
			return nil
		}
		b.n = truncate(strings.TrimSpace(x))
	default:
		b.n = DefaultCount
	}
	return nil
}

func truncate(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return DefaultCount
	}
	f = math.Trunc(f)
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

type GenerateRequest struct {
	Count   BatchSize `json:"count"`
	BatchID string    `json:"batchId,omitempty"`
}

type GenerateResponse struct {
	BatchID   string `json:"batchId"`
	Generated int    `json:"generated"`
}

type RedeemRequest struct {
	Code string `json:"code"`
}

type RedeemedCoupon struct {
	Code    string `json:"code"`
	Value   int    `json:"value"`
	BatchID string `json:"batchId"`
}

type RedeemResponse struct {
	Coupon      RedeemedCoupon `json:"coupon"`
	NewBalance  int            `json:"newBalance"`
	PointsAdded int            `json:"pointsAdded"`
}
