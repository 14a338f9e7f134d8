package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/partnerhub/partner-crm/internal/integration"
	jobmetrics "github.com/partnerhub/partner-crm/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// MaxEmailRetry bounds asynq retries for mail delivery.
	MaxEmailRetry = 5
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	if payload.To == "" || payload.Subject == "" {
		return nil, errors.New("jobs: email recipient and subject required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.MaxRetry(MaxEmailRetry), asynq.Queue(QueueDefault)), nil
}

// Mailer is satisfied by *integration.Resend.
type Mailer interface {
	Configured() bool
	Send(ctx context.Context, e integration.Email) (string, error)
}

// MailJob delivers TaskTypeSendEmail tasks.
type MailJob struct {
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle processes TaskTypeSendEmail tasks. Malformed payloads and a missing
// mail provider are not retried.
func (j *MailJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TaskTypeSendEmail, err, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskTypeSendEmail)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.String("to", payload.To), slog.String("subject", payload.Subject))
	if j.Mailer == nil || !j.Mailer.Configured() {
		logger.Warn("mail provider not configured, dropping email")
		return fmt.Errorf("%w: %w", integration.ErrNotConfigured, asynq.SkipRetry)
	}
	id, err := j.Mailer.Send(ctx, integration.Email{
		To:      []string{payload.To},
		Subject: payload.Subject,
		Text:    payload.Body,
	})
	if err != nil {
		logger.Error("send email", slog.Any("error", err))
		return err
	}
	logger.Info("email sent", slog.String("message_id", id))
	return nil
}

func (j *MailJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
