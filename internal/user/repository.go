// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/asmr-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, id, role string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	OwnedResourceIDs(ctx context.Context, userID string) ([]int64, error)
	PlaylistIDs(ctx context.Context, userID string) ([]int64, error)
	ReplacePlaylist(ctx context.Context, userID string, resourceIDs []int64) error
	Purchase(ctx context.Context, userID string, resourceID int64, price int) (int, error)
}

type repository struct {
	db core.TxStarter
}

func NewRepository(db core.TxStarter) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, email, password_hash, nickname, role, is_verified, points,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, nickname, role, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING points, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Nickname,
		user.Role,
		user.IsVerified,
	)
	if err := row.Scan(&user.Points, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET nickname = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query, user.ID, user.Nickname)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

func (r *repository) UpdateRole(ctx context.Context, id, role string) error {
	query := `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "update role", query, id, role)
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR nickname ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM users WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) OwnedResourceIDs(ctx context.Context, userID string) ([]int64, error) {
	query := `
		SELECT resource_id FROM user_owned_resources
		WHERE user_id = $1
		ORDER BY purchased_at, resource_id`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("owned resources: %w", err)
	}
	return ids, nil
}

func (r *repository) PlaylistIDs(ctx context.Context, userID string) ([]int64, error) {
	query := `
		SELECT resource_id FROM user_playlist
		WHERE user_id = $1
		ORDER BY position`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("playlist: %w", err)
	}
	return ids, nil
}

// ReplacePlaylist swaps the whole playlist in one transaction. Duplicate
// ids keep their first position.
func (r *repository) ReplacePlaylist(
	ctx context.Context,
	userID string,
	resourceIDs []int64,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_playlist WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("clear playlist: %w", err)
		}

		for pos, id := range resourceIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO user_playlist (user_id, resource_id, position)
				VALUES ($1, $2, $3)
				ON CONFLICT (user_id, resource_id) DO NOTHING`,
				userID, id, pos)
			if err != nil {
				if core.IsForeignKeyError(err) {
					return fmt.Errorf("playlist resource %d: %w", id, core.ErrNotFound)
				}
				return fmt.Errorf("insert playlist entry: %w", err)
			}
		}

		return nil
	})
}

// Purchase records ownership and deducts price as one conditional write.
// The owned-set insert is the idempotency guard and the guarded decrement
// keeps points non-negative; either miss rolls the whole thing back.
func (r *repository) Purchase(
	ctx context.Context,
	userID string,
	resourceID int64,
	price int,
) (int, error) {
	var remaining int

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO user_owned_resources (user_id, resource_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, resource_id) DO NOTHING`,
			userID, resourceID)
		if err != nil {
			return fmt.Errorf("record ownership: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("record ownership: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("record ownership: %w", core.ErrConflict)
		}

		err = tx.GetContext(ctx, &remaining, `
			UPDATE users
			SET points = points - $2, updated_at = NOW()
			WHERE id = $1 AND points >= $2
			RETURNING points`,
			userID, price)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("deduct points: %w", core.ErrInsufficientPoints)
		}
		if err != nil {
			return fmt.Errorf("deduct points: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return remaining, nil
}
