package prospects

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partnerhub/partner-crm/internal/audit"
	"github.com/partnerhub/partner-crm/internal/clients"
	"github.com/partnerhub/partner-crm/internal/platform/db"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/shared"
)

// ErrAlreadyReviewed is returned when a prospect has left pending.
var ErrAlreadyReviewed = httpx.Conflict("Prospect already reviewed")

// ErrRequestInFlight is returned when an Idempotency-Key is claimed but the
// original request has not produced a prospect.
var ErrRequestInFlight = httpx.Conflict("Request already processed")

// IdempotencyModule scopes prospect keys in idempotency_keys.
const IdempotencyModule = "prospects.create"

// Repository persists prospects and their review outcome.
type Repository interface {
	Get(ctx context.Context, id int64) (*Prospect, error)
	List(ctx context.Context, req ListProspectsRequest) ([]Prospect, int, error)
	// Create stores p; when key is set a replayed key returns the original
	// prospect with replayed=true.
	Create(ctx context.Context, p Prospect, key *shared.IdempotencyKey) (created *Prospect, replayed bool, err error)
	// Review records the decision and, on approval, creates the client in the
	// same transaction.
	Review(ctx context.Context, id int64, review Review) (*Prospect, *clients.Client, error)
	UserEmail(ctx context.Context, userID int64) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const prospectColumns = `id, name, company, email, phone, notes, status, submitted_by, partner_id,
reviewed_by, reviewed_at, review_note, client_id, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Prospect, error) {
	return get(ctx, r.pool, id, false)
}

func get(ctx context.Context, q db.DBTX, id int64, lock bool) (*Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospects WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	return scanProspect(q.QueryRow(ctx, query, id))
}

func (r *repository) List(ctx context.Context, req ListProspectsRequest) ([]Prospect, int, error) {
	var (
		conditions []string
		args       []any
	)
	if req.SubmittedBy != nil {
		args = append(args, *req.SubmittedBy)
		conditions = append(conditions, "submitted_by = $"+strconv.Itoa(len(args)))
	}
	if req.Status != "" {
		args = append(args, req.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM prospects`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, req.Limit, req.Offset)
	query := `SELECT ` + prospectColumns + ` FROM prospects` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Prospect{}
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Prospect, key *shared.IdempotencyKey) (*Prospect, bool, error) {
	var (
		created  *Prospect
		replayed bool
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if key != nil {
			existing, claimed, err := shared.Claim(ctx, tx, *key)
			if err != nil {
				if errors.Is(err, shared.ErrIdempotencyConflict) {
					return ErrRequestInFlight
				}
				return err
			}
			if !claimed {
				prev, err := get(ctx, tx, existing, false)
				if err != nil {
					return err
				}
				created, replayed = prev, true
				return nil
			}
		}
		row := tx.QueryRow(ctx, `INSERT INTO prospects (name, company, email, phone, notes, status, submitted_by, partner_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+prospectColumns,
			p.Name, p.Company, p.Email, p.Phone, p.Notes, StatusPending, p.SubmittedBy, p.PartnerID)
		out, err := scanProspect(row)
		if err != nil {
			return err
		}
		if key != nil {
			if err := shared.Complete(ctx, tx, *key, out.ID); err != nil {
				return err
			}
		}
		created = out
		return audit.Write(ctx, tx, audit.Entry{
			ActorID:  p.SubmittedBy,
			Action:   "prospect.create",
			Entity:   "prospect",
			EntityID: strconv.FormatInt(out.ID, 10),
			Meta:     map[string]any{"name": out.Name},
		})
	})
	if err != nil {
		return nil, false, err
	}
	return created, replayed, nil
}

func (r *repository) Review(ctx context.Context, id int64, review Review) (*Prospect, *clients.Client, error) {
	var (
		updated *Prospect
		client  *clients.Client
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := get(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if current.Status != StatusPending {
			return ErrAlreadyReviewed
		}
		var clientID *int64
		if review.Status == StatusValidated {
			c, err := clients.Insert(ctx, tx, clients.Client{
				Name:       current.Name,
				Company:    current.Company,
				Email:      current.Email,
				Phone:      current.Phone,
				Status:     clients.StatusActive,
				OwnerID:    current.SubmittedBy,
				PartnerID:  current.PartnerID,
				ProspectID: &current.ID,
				Notes:      current.Notes,
			})
			if err != nil {
				return err
			}
			client, clientID = c, &c.ID
		}
		row := tx.QueryRow(ctx, `UPDATE prospects SET status = $2, reviewed_by = $3, reviewed_at = NOW(), review_note = $4,
client_id = $5, updated_at = NOW() WHERE id = $1 RETURNING `+prospectColumns,
			id, review.Status, review.ReviewerID, review.Note, clientID)
		if updated, err = scanProspect(row); err != nil {
			return err
		}
		meta := map[string]any{"status": review.Status}
		if clientID != nil {
			meta["client_id"] = *clientID
		}
		return audit.Write(ctx, tx, audit.Entry{
			ActorID:  review.ReviewerID,
			Action:   "prospect." + review.Status,
			Entity:   "prospect",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     meta,
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, client, nil
}

func (r *repository) UserEmail(ctx context.Context, userID int64) (string, error) {
	var email string
	if err := r.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email); err != nil {
		return "", db.Translate(err)
	}
	return email, nil
}

func scanProspect(row pgx.Row) (*Prospect, error) {
	var p Prospect
	err := row.Scan(&p.ID, &p.Name, &p.Company, &p.Email, &p.Phone, &p.Notes, &p.Status, &p.SubmittedBy, &p.PartnerID,
		&p.ReviewedBy, &p.ReviewedAt, &p.ReviewNote, &p.ClientID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, db.Translate(err)
	}
	return &p, nil
}
