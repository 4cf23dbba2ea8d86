package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/gestloc/internal/domain"
)

const candidatureColumns = `id, reference, nom, email, logement_id, statut, deleted_at, created_at, updated_at`

// CandidatureRepository implements domain.CandidatureRepository.
type CandidatureRepository struct {
	q querier
}

func (r *CandidatureRepository) Create(ctx context.Context, c *domain.Candidature) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO candidatures (reference, nom, email, logement_id, statut, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Reference, c.Name, c.Email, c.LogementID, string(c.Status),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Reason: fmt.Sprintf("candidature reference %q is already in use", c.Reference)}
		}
		return fmt.Errorf("inserting candidature: %w", err)
	}

	c.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading candidature id: %w", err)
	}
	return nil
}

func (r *CandidatureRepository) GetByID(ctx context.Context, id int64) (domain.Candidature, error) {
	c, err := scanCandidature(r.q.QueryRowContext(ctx,
		`SELECT `+candidatureColumns+` FROM candidatures WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Candidature{}, domain.ErrCandidatureNotFound
	}
	return c, err
}

func (r *CandidatureRepository) List(ctx context.Context, filter domain.CandidatureFilter) ([]domain.Candidature, error) {
	query := `SELECT ` + candidatureColumns + ` FROM candidatures WHERE 1 = 1`
	var args []any

	if !filter.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if filter.Status != nil {
		query += ` AND statut = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY created_at DESC, id DESC`
	query, args = paginate(query, args, filter.Limit, filter.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing candidatures: %w", err)
	}
	defer rows.Close()

	var candidatures []domain.Candidature
	for rows.Next() {
		c, err := scanCandidature(rows)
		if err != nil {
			return nil, err
		}
		candidatures = append(candidatures, c)
	}

	return candidatures, rows.Err()
}

func (r *CandidatureRepository) Update(ctx context.Context, c domain.Candidature) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE candidatures SET nom = ?, email = ?, statut = ?, deleted_at = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name, c.Email, string(c.Status), formatNullTime(c.DeletedAt),
		formatTime(time.Now()), c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating candidature: %w", err)
	}
	return checkAffected(result, domain.ErrCandidatureNotFound)
}

func (r *CandidatureRepository) AddNote(ctx context.Context, n *domain.Note) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO candidature_notes (candidature_id, contenu, created_at) VALUES (?, ?, ?)`,
		n.CandidatureID, n.Body, formatTime(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}

	n.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading note id: %w", err)
	}
	return nil
}

func (r *CandidatureRepository) ListNotes(ctx context.Context, candidatureID int64) ([]domain.Note, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, candidature_id, contenu, created_at FROM candidature_notes
		 WHERE candidature_id = ? ORDER BY id`, candidatureID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		var createdAt string
		if err := rows.Scan(&n.ID, &n.CandidatureID, &n.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		n.CreatedAt = parseTime(createdAt)
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

func scanCandidature(row scanner) (domain.Candidature, error) {
	var c domain.Candidature
	var status, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(&c.ID, &c.Reference, &c.Name, &c.Email, &c.LogementID, &status, &deletedAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Candidature{}, err
		}
		return domain.Candidature{}, fmt.Errorf("scanning candidature: %w", err)
	}

	c.Status = domain.CandidatureStatus(status)
	c.DeletedAt = parseNullTime(deletedAt)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)

	return c, nil
}
