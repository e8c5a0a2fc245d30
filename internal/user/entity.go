// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/asmr-backend/internal/access"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Nickname     string    `db:"nickname"`
	Role         string    `db:"role"`
	IsVerified   bool      `db:"is_verified"`
	Points       int       `db:"points"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == access.RoleAdmin
}

// Profile is a user together with their playlist and owned set.
type Profile struct {
	User
	Playlist []int64
	Owned    []int64
}
