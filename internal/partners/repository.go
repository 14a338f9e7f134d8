package partners

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partnerhub/partner-crm/internal/platform/db"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Partner, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]Partner, int, error)
	Create(ctx context.Context, p Partner) (*Partner, error)
	Update(ctx context.Context, id int64, updates *db.Updates) (*Partner, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const partnerColumns = `id, name, document, contact_email, tier, commission_rate, is_active, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Partner, error) {
	return scanPartner(r.db.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]Partner, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM partners WHERE ($1 = FALSE OR is_active)`, activeOnly).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+partnerColumns+` FROM partners WHERE ($1 = FALSE OR is_active) ORDER BY name LIMIT $2 OFFSET $3`, activeOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Partner{}
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Partner) (*Partner, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO partners (name, document, contact_email, tier, commission_rate, is_active)
VALUES ($1, $2, $3, $4, $5, TRUE) RETURNING `+partnerColumns,
		p.Name, p.Document, p.ContactEmail, p.Tier, p.CommissionRate)
	return scanPartner(row)
}

func (r *repository) Update(ctx context.Context, id int64, updates *db.Updates) (*Partner, error) {
	query, args := updates.Statement("partners", id)
	return scanPartner(r.db.QueryRow(ctx, query+` RETURNING `+partnerColumns, args...))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.Translate(pgx.ErrNoRows)
	}
	return nil
}

func scanPartner(row pgx.Row) (*Partner, error) {
	var p Partner
	if err := row.Scan(&p.ID, &p.Name, &p.Document, &p.ContactEmail, &p.Tier, &p.CommissionRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, db.Translate(err)
	}
	return &p, nil
}
