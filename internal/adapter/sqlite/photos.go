package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/gestloc/internal/domain"
)

const photoColumns = `id, etat_des_lieux_id, categorie, chemin, mime_type, taille, created_at`

// PhotoRepository implements domain.PhotoRepository.
type PhotoRepository struct {
	q querier
}

func (r *PhotoRepository) Create(ctx context.Context, p *domain.Photo) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO photos (etat_des_lieux_id, categorie, chemin, mime_type, taille, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.InspectionID, string(p.Category), p.Path, p.MimeType, p.Size, formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting photo: %w", err)
	}

	p.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading photo id: %w", err)
	}
	return nil
}

func (r *PhotoRepository) GetByID(ctx context.Context, id int64) (domain.Photo, error) {
	p, err := scanPhoto(r.q.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Photo{}, domain.ErrPhotoNotFound
	}
	return p, err
}

func (r *PhotoRepository) ListByInspection(ctx context.Context, inspectionID int64) ([]domain.Photo, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE etat_des_lieux_id = ? ORDER BY id`, inspectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	defer rows.Close()

	var out []domain.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PhotoRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	return checkAffected(result, domain.ErrPhotoNotFound)
}

func scanPhoto(row scanner) (domain.Photo, error) {
	var p domain.Photo
	var category, createdAt string

	if err := row.Scan(&p.ID, &p.InspectionID, &category, &p.Path, &p.MimeType, &p.Size, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Photo{}, err
		}
		return domain.Photo{}, fmt.Errorf("scanning photo: %w", err)
	}

	p.Category = domain.PhotoCategory(category)
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}
