// AngelaMos | 2026
// entity.go

package comment

import (
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Comment is a reply on a resource. ParentID is set for nested replies and
// always points at a comment on the same resource.
type Comment struct {
	ID             string    `db:"id"`
	Content        string    `db:"content"`
	AuthorID       string    `db:"author_id"`
	AuthorNickname string    `db:"author_nickname"`
	ResourceID     int64     `db:"resource_id"`
	ParentID       *string   `db:"parent_id"`
	Status         Status    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type ListParams struct {
	Status Status
	Page   int
	Limit  int
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
