// AngelaMos | 2026
// repository.go

package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	ListByResource(ctx context.Context, resourceID int64, status Status) ([]Comment, error)
	List(ctx context.Context, params ListParams) ([]Comment, int, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Comment, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const commentColumns = `
	c.id, c.content, c.author_id, u.nickname AS author_nickname,
	c.resource_id, c.parent_id, c.status, c.created_at, c.updated_at`

// Create inserts c and fills in the author's nickname and timestamps. A
// missing author, resource or parent fails with ErrNotFound.
func (r *repository) Create(ctx context.Context, c *Comment) error {
	query := `
		WITH c AS (
			INSERT INTO comments (id, content, author_id, resource_id, parent_id, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)
		SELECT ` + commentColumns + `
		FROM c
		JOIN users u ON u.id = c.author_id`

	err := r.db.GetContext(ctx, c, query,
		c.ID, c.Content, c.AuthorID, c.ResourceID, c.ParentID, c.Status)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create comment: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1`

	var c Comment
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get comment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &c, nil
}

func (r *repository) ListByResource(
	ctx context.Context,
	resourceID int64,
	status Status,
) ([]Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.resource_id = $1 AND c.status = $2
		ORDER BY c.created_at ASC, c.id ASC`

	var comments []Comment
	if err := r.db.SelectContext(ctx, &comments, query, resourceID, status); err != nil {
		return nil, fmt.Errorf("list resource comments: %w", err)
	}

	return comments, nil
}

// List pages through every comment for moderation, newest first. An empty
// status matches all of them.
func (r *repository) List(ctx context.Context, params ListParams) ([]Comment, int, error) {
	params.Normalize()

	var total int
	if err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM comments
		WHERE ($1 = '' OR status = $1)`,
		string(params.Status)); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE ($1 = '' OR c.status = $1)
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3`

	var comments []Comment
	if err := r.db.SelectContext(ctx, &comments, query,
		string(params.Status), params.Limit, params.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	return comments, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) (*Comment, error) {
	query := `
		WITH c AS (
			UPDATE comments
			SET status = $2, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + commentColumns + `
		FROM c
		JOIN users u ON u.id = c.author_id`

	var c Comment
	err := r.db.GetContext(ctx, &c, query, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update comment status: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update comment status: %w", err)
	}

	return &c, nil
}
