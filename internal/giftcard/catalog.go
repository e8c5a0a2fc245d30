// AngelaMos | 2026
// catalog.go

package giftcard

import (
	"strings"
)

type Card struct {
	Code        string
	Description string
	Points      int
}

var catalog = map[string]Card{
	"MEGA1000":   {Code: "MEGA1000", Description: "Mega bonus card", Points: 1000},
	"PREMIUM500": {Code: "PREMIUM500", Description: "Premium bonus card", Points: 500},
	"SPECIAL250": {Code: "SPECIAL250", Description: "Special offer card", Points: 250},
	"WELCOME100": {Code: "WELCOME100", Description: "Welcome bonus card", Points: 100},
}

// Lookup normalizes code and finds it in the fixed card table.
func Lookup(code string) (Card, bool) {
	card, ok := catalog[strings.ToUpper(strings.TrimSpace(code))]
	return card, ok
}
