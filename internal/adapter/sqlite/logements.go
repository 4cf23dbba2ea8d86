package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/gestloc/internal/domain"
)

const logementColumns = `id, reference, adresse, loyer_cents, charges_cents, statut, created_at, updated_at`

// LogementRepository implements domain.LogementRepository.
type LogementRepository struct {
	q querier
}

func (r *LogementRepository) Create(ctx context.Context, l *domain.Logement) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO logements (reference, adresse, loyer_cents, charges_cents, statut, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.Reference, l.Address, l.RentCents, l.ChargesCents, string(l.Status),
		formatTime(l.CreatedAt), formatTime(l.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Reason: fmt.Sprintf("logement reference %q is already in use", l.Reference)}
		}
		return fmt.Errorf("inserting logement: %w", err)
	}

	l.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading logement id: %w", err)
	}
	return nil
}

func (r *LogementRepository) GetByID(ctx context.Context, id int64) (domain.Logement, error) {
	l, err := scanLogement(r.q.QueryRowContext(ctx,
		`SELECT `+logementColumns+` FROM logements WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Logement{}, domain.ErrLogementNotFound
	}
	return l, err
}

func (r *LogementRepository) List(ctx context.Context, filter domain.LogementFilter) ([]domain.Logement, error) {
	query := `SELECT ` + logementColumns + ` FROM logements`
	var args []any

	if filter.Status != nil {
		query += ` WHERE statut = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY reference`
	query, args = paginate(query, args, filter.Limit, filter.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing logements: %w", err)
	}
	defer rows.Close()

	var logements []domain.Logement
	for rows.Next() {
		l, err := scanLogement(rows)
		if err != nil {
			return nil, err
		}
		logements = append(logements, l)
	}

	return logements, rows.Err()
}

func (r *LogementRepository) SetStatus(ctx context.Context, id int64, status domain.LogementStatus) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE logements SET statut = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating logement status: %w", err)
	}
	return checkAffected(result, domain.ErrLogementNotFound)
}

func scanLogement(row scanner) (domain.Logement, error) {
	var l domain.Logement
	var status, createdAt, updatedAt string

	err := row.Scan(&l.ID, &l.Reference, &l.Address, &l.RentCents, &l.ChargesCents, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Logement{}, err
		}
		return domain.Logement{}, fmt.Errorf("scanning logement: %w", err)
	}

	l.Status = domain.LogementStatus(status)
	l.CreatedAt = parseTime(createdAt)
	l.UpdatedAt = parseTime(updatedAt)

	return l, nil
}
