package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// AuditRepository implements domain.AuditRepository.
type AuditRepository struct {
	q querier
}

// Append inserts an entry. Inside a transaction the insert runs under a
// savepoint, so a failed audit write leaves the surrounding transaction usable.
func (r *AuditRepository) Append(ctx context.Context, e *domain.AuditEntry) error {
	if _, inTx := r.q.(*sql.Tx); !inTx {
		return r.insert(ctx, e)
	}

	if _, err := r.q.ExecContext(ctx, `SAVEPOINT audit_entry`); err != nil {
		return fmt.Errorf("opening audit savepoint: %w", err)
	}

	if err := r.insert(ctx, e); err != nil {
		if _, rbErr := r.q.ExecContext(ctx, `ROLLBACK TO SAVEPOINT audit_entry`); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back audit savepoint: %w", rbErr))
		}
		if _, relErr := r.q.ExecContext(ctx, `RELEASE SAVEPOINT audit_entry`); relErr != nil {
			return errors.Join(err, fmt.Errorf("releasing audit savepoint: %w", relErr))
		}
		return err
	}

	if _, err := r.q.ExecContext(ctx, `RELEASE SAVEPOINT audit_entry`); err != nil {
		return fmt.Errorf("releasing audit savepoint: %w", err)
	}
	return nil
}

func (r *AuditRepository) insert(ctx context.Context, e *domain.AuditEntry) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO audit_log (entity_type, entity_id, action, details, actor_ip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(e.EntityType), e.EntityID, e.Action, e.Details, e.ActorIP, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	e.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading audit entry id: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	query := `SELECT id, entity_type, entity_id, action, details, actor_ip, created_at
		FROM audit_log WHERE entity_type = ? AND entity_id = ? ORDER BY id`
	args := []any{string(filter.EntityType), filter.EntityID}
	query, args = paginate(query, args, filter.Limit, 0)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var entityType, createdAt string
		if err := rows.Scan(&e.ID, &entityType, &e.EntityID, &e.Action, &e.Details, &e.ActorIP, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.EntityType = domain.EntityType(entityType)
		e.CreatedAt = parseTime(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
