// AngelaMos | 2026
// dto.go

package comment

import (
	"time"
)

const MaxContentLength = 2000

type CreateRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parent,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

type AuthorResponse struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

type CommentResponse struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Author    AuthorResponse    `json:"author"`
	Resource  int64             `json:"resource"`
	Parent    *string           `json:"parent"`
	Status    Status            `json:"status"`
	Replies   []CommentResponse `json:"replies,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func ToCommentResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		Author:    AuthorResponse{ID: c.AuthorID, Nickname: c.AuthorNickname},
		Resource:  c.ResourceID,
		Parent:    c.ParentID,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func ToCommentResponseList(comments []Comment) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i := range comments {
		out[i] = ToCommentResponse(&comments[i])
	}
	return out
}

// BuildThread nests approved comments under their parents, oldest first.
// A reply whose parent is absent from comments is dropped along with its
// own replies, so nothing under a hidden comment leaks out.
func BuildThread(comments []Comment) []CommentResponse {
	children := make(map[string][]*Comment)
	var roots []*Comment

	for i := range comments {
		c := &comments[i]
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var build func(c *Comment) CommentResponse
	build = func(c *Comment) CommentResponse {
		resp := ToCommentResponse(c)
		for _, child := range children[c.ID] {
			resp.Replies = append(resp.Replies, build(child))
		}
		return resp
	}

	thread := make([]CommentResponse, 0, len(roots))
	for _, root := range roots {
		thread = append(thread, build(root))
	}
	return thread
}
