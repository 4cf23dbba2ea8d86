package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// DefaultRenderTimeout bounds a PDF rendering when none is configured.
const DefaultRenderTimeout = 30 * time.Second

// ErrRenderTimeout is returned when the renderer does not finish in time.
var ErrRenderTimeout = errors.New("document rendering timed out")

// DocumentService gathers contract data and renders PDFs under a deadline.
type DocumentService struct {
	store    domain.Store
	renderer domain.DocumentRenderer
	timeout  time.Duration
}

// NewDocumentService creates a service. A non-positive timeout selects DefaultRenderTimeout.
func NewDocumentService(store domain.Store, renderer domain.DocumentRenderer, timeout time.Duration) *DocumentService {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	return &DocumentService{store: store, renderer: renderer, timeout: timeout}
}

// ContractPDF renders the lease and returns the temporary file path.
func (s *DocumentService) ContractPDF(ctx context.Context, contractID int64) (string, error) {
	doc, err := s.contractDocument(ctx, contractID)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.renderer.RenderContract(ctx, doc)
	if err != nil {
		return "", renderError(ctx, "contract", err)
	}
	return out, nil
}

// InspectionPDF renders the most recent inspection of the given type with its photos.
func (s *DocumentService) InspectionPDF(ctx context.Context, contractID int64, kind domain.InspectionType) (string, error) {
	if !kind.Valid() {
		return "", &domain.ValidationError{Field: "type", Reason: "must be entree or sortie"}
	}

	base, err := s.contractDocument(ctx, contractID)
	if err != nil {
		return "", err
	}

	inspections, err := s.store.Records().ListInspections(ctx, contractID)
	if err != nil {
		return "", err
	}

	var found *domain.Inspection
	for i := range inspections {
		if inspections[i].Type == kind {
			found = &inspections[i]
		}
	}
	if found == nil {
		return "", domain.ErrInspectionNotFound
	}

	photos, err := s.store.Photos().ListByInspection(ctx, found.ID)
	if err != nil {
		return "", err
	}

	doc := domain.InspectionDocument{
		Contract:    base.Contract,
		Logement:    base.Logement,
		Candidature: base.Candidature,
		Inspection:  *found,
		Photos:      photos,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.renderer.RenderInspection(ctx, doc)
	if err != nil {
		return "", renderError(ctx, "inspection", err)
	}
	return out, nil
}

func (s *DocumentService) contractDocument(ctx context.Context, contractID int64) (domain.ContractDocument, error) {
	c, err := liveContract(ctx, s.store, contractID)
	if err != nil {
		return domain.ContractDocument{}, err
	}
	l, err := s.store.Logements().GetByID(ctx, c.LogementID)
	if err != nil {
		return domain.ContractDocument{}, err
	}
	cand, err := s.store.Candidatures().GetByID(ctx, c.CandidatureID)
	if err != nil {
		return domain.ContractDocument{}, err
	}
	return domain.ContractDocument{Contract: c, Logement: l, Candidature: cand}, nil
}

func renderError(ctx context.Context, what string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("rendering %s: %w", what, ErrRenderTimeout)
	}
	return fmt.Errorf("rendering %s: %w", what, err)
}
