// AngelaMos | 2026
// code.go

package coupon

import (
	"math/rand/v2"
	"strings"
)

// CodeAlphabet drops 0, 1, O and I so codes survive being read aloud.
const CodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const (
	codeLength = 16
	groupSize  = 4
)

// CodeGenerator returns one formatted coupon code per call.
type CodeGenerator func() string

// NewCode returns a code shaped XXXX-XXXX-XXXX-XXXX.
func NewCode() string {
	var b strings.Builder
	b.Grow(codeLength + codeLength/groupSize - 1)

	for i := range codeLength {
		if i > 0 && i%groupSize == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(CodeAlphabet[rand.IntN(len(CodeAlphabet))])
	}

	return b.String()
}

// NormalizeCode trims and upper-cases user input.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
