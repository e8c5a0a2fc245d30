// AngelaMos | 2026
// entity.go

package content

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

const (
	MediaTypeAudio    = "audio"
	MediaTypeSubtitle = "subtitle"
	MediaTypeImage    = "image"
)

type Resource struct {
	ID          int64      `db:"id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Price       int        `db:"price"`
	Public      bool       `db:"public"`
	Visibility  Visibility `db:"visibility"`
	CoverID     *int64     `db:"cover_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`

	Cover     *Media     `db:"-"`
	Images    []Image    `db:"-"`
	Audios    []Audio    `db:"-"`
	Subtitles []Subtitle `db:"-"`
}

// IsFree reports a resource that anyone signed in may stream.
func (r *Resource) IsFree() bool {
	return r.Price == 0
}

// FindAudio returns the audio entry whose stored file is named filename.
func (r *Resource) FindAudio(filename string) (*Audio, bool) {
	for i := range r.Audios {
		if r.Audios[i].Media.Filename == filename {
			return &r.Audios[i], true
		}
	}
	return nil, false
}

type Media struct {
	ID        int64     `db:"id"`
	Type      string    `db:"type"`
	Filename  string    `db:"filename"`
	MimeType  string    `db:"mime_type"`
	Filesize  int64     `db:"filesize"`
	Language  *string   `db:"language"`
	Title     *string   `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

type Audio struct {
	ResourceID int64    `db:"resource_id"`
	Position   int      `db:"position"`
	Title      string   `db:"title"`
	Duration   *float64 `db:"duration"`
	Media      Media    `db:"media"`
}

type Subtitle struct {
	ResourceID int64  `db:"resource_id"`
	Language   string `db:"language"`
	Media      Media  `db:"media"`
}

type Image struct {
	ResourceID int64   `db:"resource_id"`
	Position   int     `db:"position"`
	Caption    *string `db:"caption"`
	Media      Media   `db:"media"`
}

// Visibility is the jsonb list of roles allowed to read a resource's
// audios and subtitles.
type Visibility []string

func (v *Visibility) Scan(src any) error {
	var raw []byte
	switch s := src.(type) {
	case nil:
		*v = nil
		return nil
	case []byte:
		raw = s
	case string:
		raw = []byte(s)
	default:
		return fmt.Errorf("scan visibility: unsupported type %T", src)
	}

	var roles []string
	if err := json.Unmarshal(raw, &roles); err != nil {
		return fmt.Errorf("scan visibility: %w", err)
	}
	*v = roles
	return nil
}

func (v Visibility) Value() (driver.Value, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(v))
}

// Account is the purchasing view of a user: balance, role and what they
// already own.
type Account struct {
	ID               string
	Email            string
	Nickname         string
	Role             string
	Points           int
	IsVerified       bool
	OwnedResourceIDs []int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (a *Account) Owns(resourceID int64) bool {
	return slices.Contains(a.OwnedResourceIDs, resourceID)
}

type ListParams struct {
	Page   int
	Limit  int
	Sort   string
	Search string
}

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultListLimit
	}
	if p.Limit > maxListLimit {
		p.Limit = maxListLimit
	}
	if p.Sort == "" {
		p.Sort = "-createdAt"
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

var sortColumns = map[string]string{
	"createdAt":  "created_at ASC, id ASC",
	"-createdAt": "created_at DESC, id DESC",
	"price":      "price ASC, id ASC",
	"-price":     "price DESC, id DESC",
	"title":      "title ASC, id ASC",
	"-title":     "title DESC, id DESC",
}

func IsValidSort(sort string) bool {
	_, ok := sortColumns[sort]
	return ok
}
