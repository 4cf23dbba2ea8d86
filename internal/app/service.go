package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// now is the timestamp every mutation records. Stored times have second
// precision, so restore can match dependents on equality.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// recordAudit appends one audit entry through repos. A failed write is logged
// and dropped: losing an entry never aborts the business change.
func recordAudit(ctx context.Context, repos domain.Repositories, entity domain.EntityType, id int64, action, details string) {
	entry := domain.AuditEntry{
		EntityType: entity,
		EntityID:   id,
		Action:     action,
		Details:    details,
		ActorIP:    domain.ActorFrom(ctx).IP,
		CreatedAt:  now(),
	}
	if err := repos.Audit().Append(ctx, &entry); err != nil {
		slog.ErrorContext(ctx, "audit write failed",
			"entity_type", entity,
			"entity_id", id,
			"action", action,
			"error", err,
		)
	}
}

// notify hands n to the notifier. Failures are logged, never retried.
func notify(ctx context.Context, notifier domain.Notifier, n domain.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		slog.ErrorContext(ctx, "notification failed",
			"template", n.Template,
			"recipients", len(n.To),
			"error", err,
		)
	}
}

// AuditService exposes the audit trail read-only.
type AuditService struct {
	repo domain.AuditRepository
}

// NewAuditService creates an audit reader.
func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// List returns the entries recorded for one entity, oldest first.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	if filter.EntityType == "" {
		return nil, &domain.ValidationError{Field: "entity_type", Reason: "is required"}
	}
	if filter.EntityID <= 0 {
		return nil, &domain.ValidationError{Field: "entity_id", Reason: "must be positive"}
	}
	return s.repo.List(ctx, filter)
}
