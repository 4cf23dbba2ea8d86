package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// LogementService manages rental units.
type LogementService struct {
	store domain.Store
}

// NewLogementService creates a service over the given store.
func NewLogementService(store domain.Store) *LogementService {
	return &LogementService{store: store}
}

// Create registers an available unit. An empty reference is generated.
func (s *LogementService) Create(ctx context.Context, reference, address string, rentCents, chargesCents int64) (domain.Logement, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Logement{}, &domain.ValidationError{Field: "adresse", Reason: "is required"}
	}
	if rentCents < 0 || chargesCents < 0 {
		return domain.Logement{}, &domain.ValidationError{Field: "loyer", Reason: "must not be negative"}
	}

	reference = strings.TrimSpace(reference)
	if reference == "" {
		ref, err := newReference("LOG")
		if err != nil {
			return domain.Logement{}, fmt.Errorf("generating logement reference: %w", err)
		}
		reference = ref
	}

	logement := domain.NewLogement(reference, address, rentCents, chargesCents)

	err := s.store.InTx(ctx, func(repos domain.Repositories) error {
		if err := repos.Logements().Create(ctx, &logement); err != nil {
			return err
		}
		recordAudit(ctx, repos, domain.EntityLogement, logement.ID, domain.ActionCreated, logement.Reference)
		return nil
	})
	if err != nil {
		return domain.Logement{}, err
	}
	return logement, nil
}

// GetByID returns a unit by id.
func (s *LogementService) GetByID(ctx context.Context, id int64) (domain.Logement, error) {
	return s.store.Logements().GetByID(ctx, id)
}

// List returns units matching the filter.
func (s *LogementService) List(ctx context.Context, filter domain.LogementFilter) ([]domain.Logement, error) {
	return s.store.Logements().List(ctx, filter)
}
