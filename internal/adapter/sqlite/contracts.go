package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/gestloc/internal/domain"
)

const contractColumns = `id, reference, statut, logement_id, candidature_id, date_debut, date_fin_prevue,
	signature_token, token_expires_at, deleted_at, created_at, updated_at`

// ContractRepository implements domain.ContractRepository.
type ContractRepository struct {
	q querier
}

func (r *ContractRepository) Create(ctx context.Context, c *domain.Contract) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO contrats (reference, statut, logement_id, candidature_id, date_debut, date_fin_prevue,
			signature_token, token_expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Reference, string(c.Status), c.LogementID, c.CandidatureID,
		c.StartDate.Format(dateFormat), formatNullDate(c.ExpectedEndDate),
		nullString(c.SignatureToken), formatNullTime(c.TokenExpiresAt),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Reason: "candidature already has a contract"}
		}
		return fmt.Errorf("inserting contract: %w", err)
	}

	c.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading contract id: %w", err)
	}
	return nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id int64) (domain.Contract, error) {
	c, err := scanContract(r.q.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contrats WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Contract{}, domain.ErrContractNotFound
	}
	return c, err
}

func (r *ContractRepository) List(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contrats WHERE 1 = 1`
	var args []any

	if !filter.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if filter.Status != nil {
		query += ` AND statut = ?`
		args = append(args, string(*filter.Status))
	}
	if filter.LogementID > 0 {
		query += ` AND logement_id = ?`
		args = append(args, filter.LogementID)
	}

	query += ` ORDER BY created_at DESC, id DESC`
	query, args = paginate(query, args, filter.Limit, filter.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	defer rows.Close()

	var contracts []domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}

	return contracts, rows.Err()
}

func (r *ContractRepository) Update(ctx context.Context, c domain.Contract) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE contrats SET statut = ?, date_debut = ?, date_fin_prevue = ?, signature_token = ?,
			token_expires_at = ?, deleted_at = ?, updated_at = ?
		 WHERE id = ?`,
		string(c.Status), c.StartDate.Format(dateFormat), formatNullDate(c.ExpectedEndDate),
		nullString(c.SignatureToken), formatNullTime(c.TokenExpiresAt), formatNullTime(c.DeletedAt),
		formatTime(time.Now()), c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Reason: "candidature already has a contract"}
		}
		return fmt.Errorf("updating contract: %w", err)
	}
	return checkAffected(result, domain.ErrContractNotFound)
}

func (r *ContractRepository) CountOccupying(ctx context.Context, logementID, excludeID int64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contrats
		 WHERE logement_id = ? AND id <> ? AND deleted_at IS NULL AND statut <> ?`,
		logementID, excludeID, string(domain.ContractFin),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting occupying contracts: %w", err)
	}
	return n, nil
}

func (r *ContractRepository) CountForCandidature(ctx context.Context, candidatureID, excludeID int64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contrats WHERE candidature_id = ? AND id <> ? AND deleted_at IS NULL`,
		candidatureID, excludeID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting candidature contracts: %w", err)
	}
	return n, nil
}

func scanContract(row scanner) (domain.Contract, error) {
	var c domain.Contract
	var status, startDate, createdAt, updatedAt string
	var expectedEnd, token, tokenExpires, deletedAt sql.NullString

	err := row.Scan(&c.ID, &c.Reference, &status, &c.LogementID, &c.CandidatureID, &startDate, &expectedEnd,
		&token, &tokenExpires, &deletedAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Contract{}, err
		}
		return domain.Contract{}, fmt.Errorf("scanning contract: %w", err)
	}

	c.Status = domain.ContractStatus(status)
	c.StartDate, _ = time.Parse(dateFormat, startDate)
	c.ExpectedEndDate = parseNullDate(expectedEnd)
	c.SignatureToken = token.String
	c.TokenExpiresAt = parseNullTime(tokenExpires)
	c.DeletedAt = parseNullTime(deletedAt)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)

	return c, nil
}
