// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Nickname   string    `json:"nickname"`
	Role       string    `json:"role"`
	Points     int       `json:"points"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type UserEnvelope struct {
	User UserResponse `json:"user"`
}

type LoginResponse struct {
	User UserResponse `json:"user"`
	Exp  int64        `json:"exp"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Nickname:   u.Nickname,
		Role:       u.Role,
		Points:     u.Points,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
