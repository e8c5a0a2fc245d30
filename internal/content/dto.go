// AngelaMos | 2026
// dto.go

package content

import (
	"time"

	"github.com/carterperez-dev/asmr-backend/internal/access"
)

type MediaResponse struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	Filename string  `json:"filename"`
	MimeType string  `json:"mimeType"`
	Filesize int64   `json:"filesize"`
	Language *string `json:"language,omitempty"`
	Title    *string `json:"title,omitempty"`
}

type ImageResponse struct {
	Image   MediaResponse `json:"image"`
	Caption *string       `json:"caption,omitempty"`
}

type AudioResponse struct {
	Order     int           `json:"order"`
	Title     string        `json:"title"`
	AudioFile MediaResponse `json:"audioFile"`
	Duration  *float64      `json:"duration,omitempty"`
}

type SubtitleResponse struct {
	Language     string        `json:"language"`
	SubtitleFile MediaResponse `json:"subtitleFile"`
}

type ResourceResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Price       int                `json:"price"`
	Public      bool               `json:"public"`
	Visibility  []string           `json:"visibility"`
	Cover       *MediaResponse     `json:"cover,omitempty"`
	Images      []ImageResponse    `json:"images"`
	Audios      []AudioResponse    `json:"audios,omitempty"`
	Subtitles   []SubtitleResponse `json:"subtitles,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type AccountResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Nickname           string    `json:"nickname"`
	Role               string    `json:"role"`
	Points             int       `json:"points"`
	IsVerified         bool      `json:"isVerified"`
	OwnedAsmrResources []int64   `json:"ownedAsmrResources"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type TransactionSummary struct {
	PointsDeducted  int       `json:"pointsDeducted"`
	RemainingPoints int       `json:"remainingPoints"`
	PurchaseTime    time.Time `json:"purchaseTime"`
}

type PurchaseResponse struct {
	User        AccountResponse    `json:"user"`
	Resource    ResourceResponse   `json:"resource"`
	Transaction TransactionSummary `json:"transaction"`
}

func ToMediaResponse(m *Media) MediaResponse {
	return MediaResponse{
		ID:       m.ID,
		Type:     m.Type,
		Filename: m.Filename,
		MimeType: m.MimeType,
		Filesize: m.Filesize,
		Language: m.Language,
		Title:    m.Title,
	}
}

// ToResourceResponse renders r for a caller with role. Audios and
// subtitles are left out when the caller may not read them.
func ToResourceResponse(r *Resource, role string) ResourceResponse {
	visibility := []string(r.Visibility)
	if visibility == nil {
		visibility = []string{}
	}

	resp := ResourceResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Public:      r.Public,
		Visibility:  visibility,
		Images:      make([]ImageResponse, 0, len(r.Images)),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if r.Cover != nil {
		cover := ToMediaResponse(r.Cover)
		resp.Cover = &cover
	}

	for i := range r.Images {
		resp.Images = append(resp.Images, ImageResponse{
			Image:   ToMediaResponse(&r.Images[i].Media),
			Caption: r.Images[i].Caption,
		})
	}

	if !access.CanReadSensitive(role, r.Visibility) {
		return resp
	}

	resp.Audios = make([]AudioResponse, 0, len(r.Audios))
	for i := range r.Audios {
		a := &r.Audios[i]
		resp.Audios = append(resp.Audios, AudioResponse{
			Order:     a.Position,
			Title:     a.Title,
			AudioFile: ToMediaResponse(&a.Media),
			Duration:  a.Duration,
		})
	}

	resp.Subtitles = make([]SubtitleResponse, 0, len(r.Subtitles))
	for i := range r.Subtitles {
		s := &r.Subtitles[i]
		resp.Subtitles = append(resp.Subtitles, SubtitleResponse{
			Language:     s.Language,
			SubtitleFile: ToMediaResponse(&s.Media),
		})
	}

	return resp
}

func ToResourceResponseList(resources []Resource, role string) []ResourceResponse {
	out := make([]ResourceResponse, 0, len(resources))
	for i := range resources {
		out = append(out, ToResourceResponse(&resources[i], role))
	}
	return out
}

func ToAccountResponse(a *Account) AccountResponse {
	owned := a.OwnedResourceIDs
	if owned == nil {
		owned = []int64{}
	}
	return AccountResponse{
		ID:                 a.ID,
		Email:              a.Email,
		Nickname:           a.Nickname,
		Role:               a.Role,
		Points:             a.Points,
		IsVerified:         a.IsVerified,
		OwnedAsmrResources: owned,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}
