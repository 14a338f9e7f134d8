package clients

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partnerhub/partner-crm/internal/platform/db"
)

// Repository persists clients.
type Repository interface {
	Get(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Create(ctx context.Context, c Client) (*Client, error)
	Update(ctx context.Context, id int64, updates *db.Updates) (*Client, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const clientColumns = `id, name, company, email, phone, document, status, owner_id, partner_id, prospect_id, notes, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Client, error) {
	return scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	var (
		conditions []string
		args       []any
	)
	if req.OwnerID != nil {
		args = append(args, *req.OwnerID)
		conditions = append(conditions, "owner_id = $"+strconv.Itoa(len(args)))
	}
	if req.Status != "" {
		args = append(args, req.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if req.Search != "" {
		args = append(args, "%"+req.Search+"%")
		n := strconv.Itoa(len(args))
		conditions = append(conditions, "(name ILIKE $"+n+" OR company ILIKE $"+n+" OR email ILIKE $"+n+")")
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, req.Limit, req.Offset)
	query := `SELECT ` + clientColumns + ` FROM clients` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	clients := []Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *c)
	}
	return clients, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Client) (*Client, error) {
	return Insert(ctx, r.db, c)
}

// Insert stores c through q so that callers can create clients inside their
// own transaction.
func Insert(ctx context.Context, q db.DBTX, c Client) (*Client, error) {
	if c.Status == "" {
		c.Status = StatusActive
	}
	row := q.QueryRow(ctx, `INSERT INTO clients (name, company, email, phone, document, status, owner_id, partner_id, prospect_id, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING `+clientColumns,
		c.Name, c.Company, c.Email, c.Phone, c.Document, c.Status, c.OwnerID, c.PartnerID, c.ProspectID, c.Notes)
	return scanClient(row)
}

func (r *repository) Update(ctx context.Context, id int64, updates *db.Updates) (*Client, error) {
	query, args := updates.Statement("clients", id)
	return scanClient(r.db.QueryRow(ctx, query+` RETURNING `+clientColumns, args...))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.Translate(pgx.ErrNoRows)
	}
	return nil
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Document, &c.Status,
		&c.OwnerID, &c.PartnerID, &c.ProspectID, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err)
	}
	return &c, nil
}
