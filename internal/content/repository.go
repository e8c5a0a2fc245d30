// AngelaMos | 2026
// repository.go

package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

type Repository interface {
	List(ctx context.Context, params ListParams) ([]Resource, int, error)
	GetByID(ctx context.Context, id int64) (*Resource, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const resourceColumns = `
	id, title, description, price, public, visibility, cover_id,
	created_at, updated_at`

const mediaColumns = `
	m.id AS "media.id", m.type AS "media.type",
	m.filename AS "media.filename", m.mime_type AS "media.mime_type",
	m.filesize AS "media.filesize", m.language AS "media.language",
	m.title AS "media.title", m.created_at AS "media.created_at"`

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Resource, int, error) {
	params.Normalize()

	orderBy, ok := sortColumns[params.Sort]
	if !ok {
		return nil, 0, fmt.Errorf("list resources: sort %q: %w", params.Sort, core.ErrInvalidInput)
	}

	where := "public = TRUE"
	var args []any
	if params.Search != "" {
		where += " AND title ILIKE $1"
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM resources WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count resources: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM resources
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		resourceColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	var resources []Resource
	if err := r.db.SelectContext(ctx, &resources, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}

	if err := r.loadChildren(ctx, resources); err != nil {
		return nil, 0, err
	}

	return resources, total, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`

	var resource Resource
	err := r.db.GetContext(ctx, &resource, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get resource: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}

	resources := []Resource{resource}
	if err := r.loadChildren(ctx, resources); err != nil {
		return nil, err
	}

	return &resources[0], nil
}

// loadChildren fills covers, images, audios and subtitles for a page of
// resources with one query per relation.
func (r *repository) loadChildren(ctx context.Context, resources []Resource) error {
	if len(resources) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(resources))
	index := make(map[int64]int, len(resources))
	var coverIDs []int64
	for i, res := range resources {
		ids = append(ids, res.ID)
		index[res.ID] = i
		if res.CoverID != nil {
			coverIDs = append(coverIDs, *res.CoverID)
		}
	}

	var audios []Audio
	if err := r.selectIn(ctx, &audios, `
		SELECT a.resource_id, a.position, a.title, a.duration, `+mediaColumns+`
		FROM resource_audios a
		JOIN media m ON m.id = a.media_id
		WHERE a.resource_id IN (?)
		ORDER BY a.resource_id, a.position`, ids); err != nil {
		return fmt.Errorf("load audios: %w", err)
	}
	for _, a := range audios {
		res := &resources[index[a.ResourceID]]
		res.Audios = append(res.Audios, a)
	}

	var subtitles []Subtitle
	if err := r.selectIn(ctx, &subtitles, `
		SELECT s.resource_id, s.language, `+mediaColumns+`
		FROM resource_subtitles s
		JOIN media m ON m.id = s.media_id
		WHERE s.resource_id IN (?)
		ORDER BY s.resource_id, s.language`, ids); err != nil {
		return fmt.Errorf("load subtitles: %w", err)
	}
	for _, s := range subtitles {
		res := &resources[index[s.ResourceID]]
		res.Subtitles = append(res.Subtitles, s)
	}

	var images []Image
	if err := r.selectIn(ctx, &images, `
		SELECT i.resource_id, i.position, i.caption, `+mediaColumns+`
		FROM resource_images i
		JOIN media m ON m.id = i.media_id
		WHERE i.resource_id IN (?)
		ORDER BY i.resource_id, i.position`, ids); err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	for _, img := range images {
		res := &resources[index[img.ResourceID]]
		res.Images = append(res.Images, img)
	}

	if len(coverIDs) == 0 {
		return nil
	}

	var covers []Media
	if err := r.selectIn(ctx, &covers, `
		SELECT id, type, filename, mime_type, filesize, language, title, created_at
		FROM media
		WHERE id IN (?)`, coverIDs); err != nil {
		return fmt.Errorf("load covers: %w", err)
	}
	byID := make(map[int64]*Media, len(covers))
	for i := range covers {
		byID[covers[i].ID] = &covers[i]
	}
	for i := range resources {
		if resources[i].CoverID != nil {
			resources[i].Cover = byID[*resources[i].CoverID]
		}
	}

	return nil
}

func (r *repository) selectIn(
	ctx context.Context,
	dest any,
	query string,
	ids []int64,
) error {
	q, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return r.db.SelectContext(ctx, dest, sqlx.Rebind(sqlx.DOLLAR, q), args...)
}
