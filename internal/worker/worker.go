// Package worker processes queued invite email jobs.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/oneteam-app/backend/config"
	"github.com/oneteam-app/backend/pkg/queue"
)

// InviteMailer sends invite emails for queued jobs over SMTP.
type InviteMailer struct {
	cfg    config.EmailConfig
	queue  *queue.Queue
	dial   func(m *gomail.Message) error
	logger *zap.Logger
}

// NewInviteMailer creates an invite email processor.
func NewInviteMailer(cfg config.EmailConfig, q *queue.Queue, logger *zap.Logger) *InviteMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	return &InviteMailer{
		cfg:    cfg,
		queue:  q,
		dial:   func(m *gomail.Message) error { return dialer.DialAndSend(m) },
		logger: logger,
	}
}

// Process executes one invite email job.
func (w *InviteMailer) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeInviteEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.InviteEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", w.cfg.FromAddress, w.cfg.FromName)
	m.SetHeader("To", payload.RecipientEmail)
	m.SetHeader("Subject", "You have been invited to OneTeam")
	m.SetBody("text/html", inviteBody(payload))

	if err := w.dial(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	w.logger.Info("invite email sent",
		zap.String("recipient", payload.RecipientEmail),
		zap.String("token", payload.Token.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (w *InviteMailer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("invite mailer stopping")
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			w.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		w.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := w.Process(ctx, job); err != nil {
			w.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := w.queue.Retry(ctx, job); reErr != nil {
				w.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}

func inviteBody(p queue.InviteEmailPayload) string {
	return fmt.Sprintf(
		`<p>You have been invited to join OneTeam.</p>
<p><a href="%s">Complete your registration</a> before %s.</p>
<p>If you were not expecting this invitation you can ignore this email.</p>`,
		p.RegisterURL, p.ExpiresAt.Format(time.RFC1123))
}
