package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// recordTables lists every table whose rows a contract owns. Their soft-delete
// state mirrors the contract's.
var recordTables = []string{"etats_des_lieux", "inventaires", "quittances", "loyers_tracking"}

// RecordRepository implements domain.RecordRepository.
type RecordRepository struct {
	q querier
}

func (r *RecordRepository) SoftDeleteForContract(ctx context.Context, contractID int64, at time.Time) error {
	for _, table := range recordTables {
		_, err := r.q.ExecContext(ctx,
			`UPDATE `+table+` SET deleted_at = ? WHERE contrat_id = ? AND deleted_at IS NULL`,
			formatTime(at), contractID,
		)
		if err != nil {
			return fmt.Errorf("soft-deleting %s: %w", table, err)
		}
	}
	return nil
}

func (r *RecordRepository) RestoreForContract(ctx context.Context, contractID int64, at time.Time) error {
	for _, table := range recordTables {
		_, err := r.q.ExecContext(ctx,
			`UPDATE `+table+` SET deleted_at = NULL WHERE contrat_id = ? AND deleted_at = ?`,
			contractID, formatTime(at),
		)
		if err != nil {
			return fmt.Errorf("restoring %s: %w", table, err)
		}
	}
	return nil
}

// --- Inspections ---

const inspectionColumns = `id, contrat_id, type, date_etat, observations, deleted_at, created_at`

func (r *RecordRepository) CreateInspection(ctx context.Context, i *domain.Inspection) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO etats_des_lieux (contrat_id, type, date_etat, observations, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		i.ContractID, string(i.Type), i.Date.Format(dateFormat), i.Observations, formatTime(i.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting inspection: %w", err)
	}

	i.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inspection id: %w", err)
	}
	return nil
}

func (r *RecordRepository) GetInspection(ctx context.Context, id int64) (domain.Inspection, error) {
	i, err := scanInspection(r.q.QueryRowContext(ctx,
		`SELECT `+inspectionColumns+` FROM etats_des_lieux WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Inspection{}, domain.ErrInspectionNotFound
	}
	return i, err
}

func (r *RecordRepository) ListInspections(ctx context.Context, contractID int64) ([]domain.Inspection, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+inspectionColumns+` FROM etats_des_lieux
		 WHERE contrat_id = ? AND deleted_at IS NULL ORDER BY date_etat, id`, contractID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inspections: %w", err)
	}
	defer rows.Close()

	var out []domain.Inspection
	for rows.Next() {
		i, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func scanInspection(row scanner) (domain.Inspection, error) {
	var i domain.Inspection
	var kind, date, createdAt string
	var deletedAt sql.NullString

	if err := row.Scan(&i.ID, &i.ContractID, &kind, &date, &i.Observations, &deletedAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Inspection{}, err
		}
		return domain.Inspection{}, fmt.Errorf("scanning inspection: %w", err)
	}

	i.Type = domain.InspectionType(kind)
	i.Date, _ = time.Parse(dateFormat, date)
	i.DeletedAt = parseNullTime(deletedAt)
	i.CreatedAt = parseTime(createdAt)
	return i, nil
}

// --- Inventories ---

func (r *RecordRepository) CreateInventory(ctx context.Context, i *domain.Inventory) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO inventaires (contrat_id, type, date_inventaire, contenu, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		i.ContractID, string(i.Type), i.Date.Format(dateFormat), i.Content, formatTime(i.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting inventory: %w", err)
	}

	i.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inventory id: %w", err)
	}
	return nil
}

func (r *RecordRepository) ListInventories(ctx context.Context, contractID int64) ([]domain.Inventory, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, contrat_id, type, date_inventaire, contenu, deleted_at, created_at FROM inventaires
		 WHERE contrat_id = ? AND deleted_at IS NULL ORDER BY date_inventaire, id`, contractID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inventories: %w", err)
	}
	defer rows.Close()

	var out []domain.Inventory
	for rows.Next() {
		var i domain.Inventory
		var kind, date, createdAt string
		var deletedAt sql.NullString
		if err := rows.Scan(&i.ID, &i.ContractID, &kind, &date, &i.Content, &deletedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning inventory: %w", err)
		}
		i.Type = domain.InspectionType(kind)
		i.Date, _ = time.Parse(dateFormat, date)
		i.DeletedAt = parseNullTime(deletedAt)
		i.CreatedAt = parseTime(createdAt)
		out = append(out, i)
	}
	return out, rows.Err()
}

// --- Receipts ---

func (r *RecordRepository) CreateReceipt(ctx context.Context, rc *domain.Receipt) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO quittances (contrat_id, reference, mois, annee, loyer_cents, charges_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rc.ContractID, rc.Reference, rc.Month, rc.Year, rc.RentCents, rc.ChargesCents, formatTime(rc.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Reason: fmt.Sprintf("receipt reference %q is already in use", rc.Reference)}
		}
		return fmt.Errorf("inserting receipt: %w", err)
	}

	rc.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading receipt id: %w", err)
	}
	return nil
}

func (r *RecordRepository) ListReceipts(ctx context.Context, contractID int64) ([]domain.Receipt, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, contrat_id, reference, mois, annee, loyer_cents, charges_cents, deleted_at, created_at
		 FROM quittances WHERE contrat_id = ? AND deleted_at IS NULL ORDER BY annee, mois`, contractID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	defer rows.Close()

	var out []domain.Receipt
	for rows.Next() {
		var rc domain.Receipt
		var createdAt string
		var deletedAt sql.NullString
		if err := rows.Scan(&rc.ID, &rc.ContractID, &rc.Reference, &rc.Month, &rc.Year,
			&rc.RentCents, &rc.ChargesCents, &deletedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning receipt: %w", err)
		}
		rc.DeletedAt = parseNullTime(deletedAt)
		rc.CreatedAt = parseTime(createdAt)
		out = append(out, rc)
	}
	return out, rows.Err()
}

// --- Rent tracking ---

func (r *RecordRepository) CreateRentTracking(ctx context.Context, rt *domain.RentTracking) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO loyers_tracking (contrat_id, mois, annee, statut, created_at) VALUES (?, ?, ?, ?, ?)`,
		rt.ContractID, rt.Month, rt.Year, string(rt.Status), formatTime(rt.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting rent tracking: %w", err)
	}

	rt.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading rent tracking id: %w", err)
	}
	return nil
}

func (r *RecordRepository) ListRentTracking(ctx context.Context, contractID int64) ([]domain.RentTracking, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, contrat_id, mois, annee, statut, deleted_at, created_at FROM loyers_tracking
		 WHERE contrat_id = ? AND deleted_at IS NULL ORDER BY annee, mois`, contractID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing rent tracking: %w", err)
	}
	defer rows.Close()

	var out []domain.RentTracking
	for rows.Next() {
		var rt domain.RentTracking
		var status, createdAt string
		var deletedAt sql.NullString
		if err := rows.Scan(&rt.ID, &rt.ContractID, &rt.Month, &rt.Year, &status, &deletedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning rent tracking: %w", err)
		}
		rt.Status = domain.RentStatus(status)
		rt.DeletedAt = parseNullTime(deletedAt)
		rt.CreatedAt = parseTime(createdAt)
		out = append(out, rt)
	}
	return out, rows.Err()
}
