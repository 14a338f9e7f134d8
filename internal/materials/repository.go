package materials

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partnerhub/partner-crm/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, category string) ([]Material, error)
	Create(ctx context.Context, m Material) (*Material, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) List(ctx context.Context, category string) ([]Material, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, description, category, url, created_by, created_at
FROM materials WHERE ($1 = '' OR category = $1) ORDER BY category, title`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Material{}
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Category, &m.URL, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, m Material) (*Material, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO materials (title, description, category, url, created_by)
VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		m.Title, m.Description, m.Category, m.URL, m.CreatedBy).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, db.Translate(err)
	}
	return &m, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.Translate(pgx.ErrNoRows)
	}
	return nil
}
