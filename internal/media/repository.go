// AngelaMos | 2026
// repository.go

package media

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/asmr-backend/internal/content"
	"github.com/carterperez-dev/asmr-backend/internal/core"
)

type Repository interface {
	List(ctx context.Context, mediaType string, limit, offset int) ([]content.Media, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) List(
	ctx context.Context,
	mediaType string,
	limit, offset int,
) ([]content.Media, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM media
		WHERE ($1 = '' OR type = $1)`, mediaType); err != nil {
		return nil, 0, fmt.Errorf("count media: %w", err)
	}

	var items []content.Media
	if err := r.db.SelectContext(ctx, &items, `
		SELECT id, type, filename, mime_type, filesize, language, title, created_at
		FROM media
		WHERE ($1 = '' OR type = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, mediaType, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}

	return items, total, nil
}
