package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partnerhub/partner-crm/internal/platform/db"
	"github.com/partnerhub/partner-crm/internal/rbac"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, name, description, permissions, is_system, is_active, created_at, updated_at`

// ListRoles returns all roles, system roles first.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY is_system DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	roles := []Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRole fetches one role by id.
func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
}

// CreateRole inserts a custom role.
func (r *Repository) CreateRole(ctx context.Context, role Role) (Role, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO roles (name, description, permissions, is_system, is_active)
VALUES ($1, $2, $3, $4, $5) RETURNING `+roleColumns,
		role.Name.String(), role.Description, role.Permissions, role.IsSystem, role.IsActive)
	return scanRole(row)
}

// UpdateRole overwrites the mutable columns of role.
func (r *Repository) UpdateRole(ctx context.Context, role Role) (Role, error) {
	row := r.pool.QueryRow(ctx, `UPDATE roles SET name = $2, description = $3, permissions = $4, is_active = $5, updated_at = NOW()
WHERE id = $1 RETURNING `+roleColumns,
		role.ID, role.Name.String(), role.Description, role.Permissions, role.IsActive)
	return scanRole(row)
}

// DeleteRole removes a role.
func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return db.Translate(pgx.ErrNoRows)
	}
	return nil
}

// PermissionsForRole implements rbac.RoleStore. Inactive or missing roles
// resolve to no permissions.
func (r *Repository) PermissionsForRole(ctx context.Context, role rbac.Role) ([]string, error) {
	var perms []string
	err := r.pool.QueryRow(ctx, `SELECT permissions FROM roles WHERE name = $1 AND is_active`, role.String()).Scan(&perms)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []string{}, nil
		}
		return nil, err
	}
	return perms, nil
}

// EnsureSystemRoles inserts missing built-in roles without touching edited ones.
func (r *Repository) EnsureSystemRoles(ctx context.Context) (int, error) {
	created := 0
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, role := range SystemRoles() {
			tag, err := tx.Exec(ctx, `INSERT INTO roles (name, description, permissions, is_system, is_active)
VALUES ($1, $2, $3, TRUE, TRUE) ON CONFLICT (name) DO NOTHING`, role.Name.String(), role.Description, role.Permissions)
			if err != nil {
				return err
			}
			created += int(tag.RowsAffected())
		}
		return nil
	})
	return created, err
}

func scanRole(row pgx.Row) (Role, error) {
	var (
		role Role
		name string
	)
	if err := row.Scan(&role.ID, &name, &role.Description, &role.Permissions, &role.IsSystem, &role.IsActive, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return Role{}, db.Translate(err)
	}
	role.Name = rbac.ParseRole(name)
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	return role, nil
}

var _ rbac.RoleStore = (*Repository)(nil)
