package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// DefaultMaxPhotoBytes is the upload ceiling when none is configured.
const DefaultMaxPhotoBytes = 5 << 20

// PhotoService stores inspection photos on disk and their metadata in the store.
type PhotoService struct {
	store    domain.Store
	files    domain.FileStorage
	maxBytes int64
}

// NewPhotoService creates a service. A non-positive maxBytes selects DefaultMaxPhotoBytes.
func NewPhotoService(store domain.Store, files domain.FileStorage, maxBytes int64) *PhotoService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPhotoBytes
	}
	return &PhotoService{store: store, files: files, maxBytes: maxBytes}
}

// Upload validates and stores a photo for a live inspection. The content type
// is detected from the bytes; the client's file name is never used.
func (s *PhotoService) Upload(ctx context.Context, inspectionID int64, category domain.PhotoCategory, r io.Reader) (domain.Photo, error) {
	if !category.Valid() {
		return domain.Photo{}, &domain.ValidationError{Field: "categorie", Reason: fmt.Sprintf("unknown category %q", category)}
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return domain.Photo{}, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return domain.Photo{}, &domain.ValidationError{Field: "fichier", Reason: "is empty"}
	}
	if int64(len(data)) > s.maxBytes {
		return domain.Photo{}, &domain.ValidationError{Field: "fichier", Reason: fmt.Sprintf("exceeds %d bytes", s.maxBytes)}
	}

	detected := mimetype.Detect(data)
	ext, ok := domain.PhotoTypes[detected.String()]
	if !ok {
		return domain.Photo{}, &domain.ValidationError{Field: "fichier", Reason: fmt.Sprintf("content type %s is not an accepted image", detected.String())}
	}

	if _, err := liveInspection(ctx, s.store, inspectionID); err != nil {
		return domain.Photo{}, err
	}

	rel := path.Join("etats_des_lieux", strconv.FormatInt(inspectionID, 10),
		fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), uuid.NewString(), ext))
	if err := s.files.Save(ctx, rel, data); err != nil {
		return domain.Photo{}, fmt.Errorf("saving photo: %w", err)
	}

	photo := domain.Photo{
		InspectionID: inspectionID,
		Category:     category,
		Path:         rel,
		MimeType:     detected.String(),
		Size:         int64(len(data)),
		CreatedAt:    now(),
	}

	err = s.store.InTx(ctx, func(repos domain.Repositories) error {
		if err := repos.Photos().Create(ctx, &photo); err != nil {
			return err
		}
		recordAudit(ctx, repos, domain.EntityInspection, inspectionID, domain.ActionPhotoAdded,
			fmt.Sprintf("%s %s", category, rel))
		return nil
	})
	if err != nil {
		if rmErr := s.files.Remove(rel); rmErr != nil {
			slog.ErrorContext(ctx, "removing orphaned photo", "path", rel, "error", rmErr)
		}
		return domain.Photo{}, err
	}
	return photo, nil
}

// List returns the photos of an inspection.
func (s *PhotoService) List(ctx context.Context, inspectionID int64) ([]domain.Photo, error) {
	if _, err := liveInspection(ctx, s.store, inspectionID); err != nil {
		return nil, err
	}
	return s.store.Photos().ListByInspection(ctx, inspectionID)
}

// Delete removes the photo file, then its row. A file already gone is not an
// error. Photos of a trashed inspection are kept for its restore and reported
// as not found.
func (s *PhotoService) Delete(ctx context.Context, id int64) error {
	photo, err := s.store.Photos().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := liveInspection(ctx, s.store, photo.InspectionID); err != nil {
		if errors.Is(err, domain.ErrInspectionNotFound) {
			return domain.ErrPhotoNotFound
		}
		return err
	}

	if err := s.files.Remove(photo.Path); err != nil && !errors.Is(err, domain.ErrFileNotFound) {
		return fmt.Errorf("removing photo file: %w", err)
	}

	return s.store.InTx(ctx, func(repos domain.Repositories) error {
		if err := repos.Photos().Delete(ctx, id); err != nil {
			return err
		}
		recordAudit(ctx, repos, domain.EntityInspection, photo.InspectionID, domain.ActionPhotoDeleted, photo.Path)
		return nil
	})
}
