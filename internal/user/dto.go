// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/asmr-backend/internal/content"
)

type UpdateProfileRequest struct {
	Nickname *string `json:"nickname,omitempty" validate:"omitempty,min=1,max=100"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=free premium admin"`
}

type UpdatePlaylistRequest struct {
	Resources []content.RelationRef `json:"resources" validate:"max=500"`
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

type ProfileResponse struct {
	UserResponse
	Playlist           []int64 `json:"playlist"`
	OwnedAsmrResources []int64 `json:"ownedAsmrResources"`
}

type ListUsersParams struct {
	Page     int
	PageSize int
	Search   string
	Role     string
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
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

func ToProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		UserResponse:       ToUserResponse(&p.User),
		Playlist:           nonNil(p.Playlist),
		OwnedAsmrResources: nonNil(p.Owned),
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
