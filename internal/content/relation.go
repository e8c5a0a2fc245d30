// AngelaMos | 2026
// relation.go

package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

// ParseRelationID normalizes a resource reference into its id. Accepted
// shapes: an integer (any Go integer, float64 without fraction or
// json.Number), a numeric string, or an object {"id": <one of those>}.
// Ids must be positive.
func ParseRelationID(ref any) (int64, error) {
	switch v := ref.(type) {
	case int64:
		return positiveID(v)
	case int:
		return positiveID(int64(v))
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 {
			return 0, invalidRef(ref)
		}
		return positiveID(int64(v))
	case json.Number:
		return parseIDString(v.String())
	case string:
		return parseIDString(v)
	case map[string]any:
		inner, ok := v["id"]
		if !ok {
			return 0, invalidRef(ref)
		}
		if _, nested := inner.(map[string]any); nested {
			return 0, invalidRef(ref)
		}
		return ParseRelationID(inner)
	default:
		return 0, invalidRef(ref)
	}
}

// ParseResourceID parses a path segment into a resource id.
func ParseResourceID(s string) (int64, error) {
	return parseIDString(s)
}

func parseIDString(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, invalidRef(s)
	}
	return positiveID(id)
}

func positiveID(id int64) (int64, error) {
	if id <= 0 {
		return 0, invalidRef(id)
	}
	return id, nil
}

func invalidRef(ref any) error {
	return fmt.Errorf("invalid resource reference %v: %w", ref, core.ErrInvalidInput)
}

// RelationRef decodes any accepted reference shape from JSON.
type RelationRef int64

func (r *RelationRef) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode resource reference: %w", core.ErrInvalidInput)
	}

	id, err := ParseRelationID(raw)
	if err != nil {
		return err
	}
	*r = RelationRef(id)
	return nil
}
