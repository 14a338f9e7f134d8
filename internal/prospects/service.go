package prospects

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/partnerhub/partner-crm/internal/clients"
	"github.com/partnerhub/partner-crm/internal/platform/httpx"
	"github.com/partnerhub/partner-crm/internal/rbac"
	"github.com/partnerhub/partner-crm/internal/shared"
	"github.com/partnerhub/partner-crm/jobs"
)

// MaxIdempotencyKeyLength bounds the Idempotency-Key header.
const MaxIdempotencyKeyLength = 200

// Notifier queues outbound email; satisfied by *jobs.Client.
type Notifier interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) error
}

// Service handles prospect submission and review.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds Service instance. notifier may be nil.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

func scoped(p rbac.Principal) bool {
	return !p.AtLeast(rbac.RoleManager)
}

// Create stores a pending prospect submitted by actor. A repeated
// idempotencyKey from the same actor returns the first prospect with
// replayed=true.
func (s *Service) Create(ctx context.Context, actor rbac.Principal, req CreateProspectRequest, idempotencyKey string) (*Prospect, bool, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, false, err
	}
	var key *shared.IdempotencyKey
	if idempotencyKey = strings.TrimSpace(idempotencyKey); idempotencyKey != "" {
		if len(idempotencyKey) > MaxIdempotencyKeyLength {
			return nil, false, httpx.Validation("Invalid fields: Idempotency-Key")
		}
		key = &shared.IdempotencyKey{
			Key:    strconv.FormatInt(actor.UserID, 10) + ":" + idempotencyKey,
			Module: IdempotencyModule,
		}
	}
	return s.repo.Create(ctx, Prospect{
		Name:        strings.TrimSpace(req.Name),
		Company:     req.Company,
		Email:       req.Email,
		Phone:       req.Phone,
		Notes:       req.Notes,
		SubmittedBy: actor.UserID,
		PartnerID:   req.PartnerID,
	}, key)
}

// Get returns the prospect if actor may see it.
func (s *Service) Get(ctx context.Context, actor rbac.Principal, id int64) (*Prospect, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get prospect: %w", err)
	}
	if scoped(actor) && p.SubmittedBy != actor.UserID {
		return nil, httpx.ErrNotFound
	}
	return p, nil
}

// List pages through the prospects actor may see.
func (s *Service) List(ctx context.Context, actor rbac.Principal, req ListProspectsRequest) ([]Prospect, int, error) {
	if req.Status != "" && req.Status != StatusPending && req.Status != StatusValidated && req.Status != StatusRejected {
		return nil, 0, httpx.Validation("Invalid fields: status")
	}
	if scoped(actor) {
		id := actor.UserID
		req.SubmittedBy = &id
	}
	return s.repo.List(ctx, req)
}

// Validate records the reviewer's decision. Approval converts the prospect
// into a client owned by the submitter. The submitter is notified by email
// after the transaction commits; a failed enqueue does not undo the review.
func (s *Service) Validate(ctx context.Context, actor rbac.Principal, id int64, req ValidateProspectRequest) (*Prospect, *clients.Client, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, nil, err
	}
	p, client, err := s.repo.Review(ctx, id, Review{Status: req.Status, ReviewerID: actor.UserID, Note: req.Note})
	if err != nil {
		return nil, nil, err
	}
	s.notify(ctx, p)
	return p, client, nil
}

func (s *Service) notify(ctx context.Context, p *Prospect) {
	if s.notifier == nil {
		return
	}
	logger := s.logger.With(slog.Int64("prospect_id", p.ID), slog.Int64("user_id", p.SubmittedBy))
	to, err := s.repo.UserEmail(ctx, p.SubmittedBy)
	if err != nil {
		logger.Warn("prospect notification skipped", slog.Any("error", err))
		return
	}
	payload := jobs.SendEmailPayload{To: to}
	if p.Status == StatusValidated {
		payload.Subject = fmt.Sprintf("Prospect %q approved", p.Name)
		payload.Body = fmt.Sprintf("Your prospect %s was approved and is now a client.", p.Name)
	} else {
		payload.Subject = fmt.Sprintf("Prospect %q rejected", p.Name)
		payload.Body = fmt.Sprintf("Your prospect %s was not approved.", p.Name)
	}
	if p.ReviewNote != nil && *p.ReviewNote != "" {
		payload.Body += "\n\nReviewer note: " + *p.ReviewNote
	}
	if err := s.notifier.EnqueueSendEmail(ctx, payload); err != nil {
		logger.Error("enqueue prospect notification", slog.Any("error", err))
	}
}
