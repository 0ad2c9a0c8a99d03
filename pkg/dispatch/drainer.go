package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/eventbus"
	"github.com/leadforge/leadforge/pkg/mailer"
	"github.com/leadforge/leadforge/pkg/metrics"
	"github.com/leadforge/leadforge/pkg/model"
)

const (
	minEmailLimit     = 1
	maxEmailLimit     = 100
	defaultEmailLimit = 50
)

// ClampLimit bounds the caller-supplied drain batch size to [1, 100],
// defaulting to 50 when the value is missing or out of range.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return defaultEmailLimit
	}
	if limit < minEmailLimit {
		return minEmailLimit
	}
	if limit > maxEmailLimit {
		return maxEmailLimit
	}
	return limit
}

type EmailStore interface {
	ListQueued(ctx context.Context, limit int) ([]model.OutreachEmail, error)
	MarkSent(ctx context.Context, id uuid.UUID, messageID string, sentAt time.Time) error
	MarkBounced(ctx context.Context, id uuid.UUID, reason string) error
}

type DrainResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// EmailDrainer delivers queued outreach emails oldest-first. Each row is
// settled independently: one bounce never blocks its siblings.
type EmailDrainer struct {
	emails   EmailStore
	sender   mailer.Sender
	renderer *mailer.Renderer
	from     string
	bus      *eventbus.Bus
	logger   *zap.Logger
	now      func() time.Time
}

func NewEmailDrainer(emails EmailStore, sender mailer.Sender, renderer *mailer.Renderer, from string, bus *eventbus.Bus, logger *zap.Logger) *EmailDrainer {
	return &EmailDrainer{
		emails:   emails,
		sender:   sender,
		renderer: renderer,
		from:     from,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

func (d *EmailDrainer) Drain(ctx context.Context, limit int) (DrainResult, error) {
	var result DrainResult

	queued, err := d.emails.ListQueued(ctx, limit)
	if err != nil {
		return result, err
	}

	for i := range queued {
		email := &queued[i]
		if d.deliver(ctx, email) {
			result.Sent++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

func (d *EmailDrainer) deliver(ctx context.Context, email *model.OutreachEmail) bool {
	msg := mailer.Message{
		To:      email.LeadEmail,
		Subject: email.Subject,
		HTML:    d.renderer.Render(email.Content, email.ID.String()),
		From:    d.from,
		Metadata: mailer.Metadata{
			CampaignID: email.CampaignID.String(),
			LeadID:     email.LeadID.String(),
			UserID:     email.UserID.String(),
		},
	}
	if email.TemplateID != nil {
		msg.Metadata.TemplateID = email.TemplateID.String()
	}

	sendResult, err := d.sender.Send(ctx, msg)
	if err != nil || !sendResult.Success {
		reason := sendResult.Error
		if reason == "" && err != nil {
			reason = err.Error()
		}
		if reason == "" {
			reason = "unknown"
		}
		if markErr := d.emails.MarkBounced(ctx, email.ID, reason); markErr != nil {
			d.logger.Warn("failed to mark email bounced",
				zap.String("email_id", email.ID.String()),
				zap.Error(markErr),
			)
		}
		metrics.EmailsDrained.WithLabelValues("failed").Inc()
		d.publish(ctx, email, string(model.EmailBounced), reason)
		return false
	}

	if markErr := d.emails.MarkSent(ctx, email.ID, sendResult.MessageID, d.now()); markErr != nil {
		d.logger.Warn("failed to mark email sent",
			zap.String("email_id", email.ID.String()),
			zap.Error(markErr),
		)
	}
	metrics.EmailsDrained.WithLabelValues("sent").Inc()
	d.publish(ctx, email, string(model.EmailSent), "")
	return true
}

func (d *EmailDrainer) publish(ctx context.Context, email *model.OutreachEmail, status, reason string) {
	if d.bus == nil {
		return
	}
	event, err := eventbus.NewEvent("email."+status, eventbus.EmailEvent{
		EmailID:    email.ID.String(),
		CampaignID: email.CampaignID.String(),
		LeadID:     email.LeadID.String(),
		Status:     status,
		Reason:     reason,
	})
	if err != nil {
		return
	}
	_ = d.bus.Publish(ctx, eventbus.ChannelEmail, event)
}
