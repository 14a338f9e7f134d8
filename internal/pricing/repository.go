package pricing

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partnerhub/partner-crm/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Plan, error)
	Get(ctx context.Context, id int64) (*Plan, error)
	Create(ctx context.Context, p Plan) (*Plan, error)
	Update(ctx context.Context, id int64, updates *db.Updates) (*Plan, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const planColumns = `id, name, description, amount_cents, currency, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Plan, error) {
	rows, err := r.db.Query(ctx, `SELECT `+planColumns+` FROM price_plans WHERE ($1 = FALSE OR is_active) ORDER BY amount_cents, id`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Plan, error) {
	return scanPlan(r.db.QueryRow(ctx, `SELECT `+planColumns+` FROM price_plans WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, p Plan) (*Plan, error) {
	return scanPlan(r.db.QueryRow(ctx, `INSERT INTO price_plans (name, description, amount_cents, currency, is_active)
VALUES ($1, $2, $3, $4, TRUE) RETURNING `+planColumns, p.Name, p.Description, p.AmountCents, p.Currency))
}

func (r *repository) Update(ctx context.Context, id int64, updates *db.Updates) (*Plan, error) {
	query, args := updates.Statement("price_plans", id)
	return scanPlan(r.db.QueryRow(ctx, query+` RETURNING `+planColumns, args...))
}

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.AmountCents, &p.Currency, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, db.Translate(err)
	}
	return &p, nil
}
