// AngelaMos | 2026
// policy.go

package access

import (
	"slices"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

const (
	RoleFree    = "free"
	RolePremium = "premium"
	RoleAdmin   = "admin"
)

// publicVisibility marks a resource whose sensitive fields anyone may read.
const publicVisibility = "free"

var validRoles = []string{RoleFree, RolePremium, RoleAdmin}

func IsValidRole(role string) bool {
	return slices.Contains(validRoles, role)
}

// CanReadSensitive decides whether role may see a resource's audios and
// subtitles. An empty role is an anonymous caller.
func CanReadSensitive(role string, visibility []string) bool {
	if role == RoleAdmin {
		return true
	}

	if len(visibility) == 0 {
		return true
	}

	if slices.Contains(visibility, publicVisibility) {
		return true
	}

	if role == "" {
		return false
	}

	return slices.Contains(visibility, role)
}

// CanReadCollection gates listing of resources. Filtering happens per field.
func CanReadCollection() bool {
	return true
}

func CanListMedia(role string) bool {
	return role == RoleAdmin
}

// ServerTokenMatches compares a supplied machine token against the
// configured shared secret. An unset secret never matches.
func ServerTokenMatches(configured, supplied string) bool {
	return core.ConstantTimeEqual(configured, supplied)
}
