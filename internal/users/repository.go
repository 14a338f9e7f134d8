package users

import (
	"context"
	"strings"

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

const userColumns = `id, email, name, role, partner_id, is_active, last_login_at, created_at, updated_at`

// ListUsers returns all users ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser inserts a user with an already hashed password.
func (r *Repository) CreateUser(ctx context.Context, u User, passwordHash string) (User, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO users (email, name, password_hash, role, partner_id, is_active)
VALUES ($1, $2, $3, $4, $5, TRUE) RETURNING `+userColumns,
		strings.ToLower(strings.TrimSpace(u.Email)), u.Name, passwordHash, u.Role.String(), u.PartnerID)
	return scanUser(row)
}

// RoleExists reports whether an active role row carries name.
func (r *Repository) RoleExists(ctx context.Context, name rbac.Role) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1 AND is_active)`, name.String()).Scan(&exists)
	return exists, err
}

// RolePermissions returns the permission list stored on the active role name.
func (r *Repository) RolePermissions(ctx context.Context, name rbac.Role) ([]string, error) {
	var perms []string
	err := r.pool.QueryRow(ctx, `SELECT permissions FROM roles WHERE name = $1 AND is_active`, name.String()).Scan(&perms)
	if err != nil {
		return nil, db.Translate(err)
	}
	return perms, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PartnerID, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, db.Translate(err)
	}
	u.Role = rbac.ParseRole(role)
	return u, nil
}
