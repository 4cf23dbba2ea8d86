package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// CandidatureValidator validates candidature status changes.
type CandidatureValidator = domain.TransitionValidator[domain.CandidatureStatus, domain.CandidatureStatus]

// CandidatureService orchestrates rental applications.
type CandidatureService struct {
	store     domain.Store
	validator CandidatureValidator
	notifier  domain.Notifier
}

// NewCandidatureService creates a service with the given adapters.
func NewCandidatureService(store domain.Store, validator CandidatureValidator, notifier domain.Notifier) *CandidatureService {
	return &CandidatureService{
		store:     store,
		validator: validator,
		notifier:  notifier,
	}
}

// Create records a new application for an existing logement.
func (s *CandidatureService) Create(ctx context.Context, name, email string, logementID int64) (domain.Candidature, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return domain.Candidature{}, &domain.ValidationError{Field: "nom", Reason: "is required"}
	}
	if !strings.Contains(email, "@") {
		return domain.Candidature{}, &domain.ValidationError{Field: "email", Reason: "must be an email address"}
	}

	ref, err := newReference("CAND")
	if err != nil {
		return domain.Candidature{}, fmt.Errorf("generating candidature reference: %w", err)
	}

	candidature := domain.NewCandidature(ref, name, email, logementID)

	err = s.store.InTx(ctx, func(repos domain.Repositories) error {
		if _, err := repos.Logements().GetByID(ctx, logementID); err != nil {
			return err
		}
		if err := repos.Candidatures().Create(ctx, &candidature); err != nil {
			return err
		}
		recordAudit(ctx, repos, domain.EntityCandidature, candidature.ID, domain.ActionCreated, candidature.Reference)
		return nil
	})
	if err != nil {
		return domain.Candidature{}, err
	}
	return candidature, nil
}

// GetByID returns a live candidature. Trashed ones are reported as not found.
func (s *CandidatureService) GetByID(ctx context.Context, id int64) (domain.Candidature, error) {
	return liveCandidature(ctx, s.store, id)
}

// List returns candidatures matching the filter.
func (s *CandidatureService) List(ctx context.Context, filter domain.CandidatureFilter) ([]domain.Candidature, error) {
	return s.store.Candidatures().List(ctx, filter)
}

// ChangeStatus moves a candidature to target and notifies the applicant when
// the target status has a template.
func (s *CandidatureService) ChangeStatus(ctx context.Context, id int64, target domain.CandidatureStatus, comment string) (domain.Candidature, error) {
	if !target.Valid() {
		return domain.Candidature{}, &domain.ValidationError{Field: "statut", Reason: fmt.Sprintf("unknown status %q", target)}
	}

	var candidature domain.Candidature
	err := s.store.InTx(ctx, func(repos domain.Repositories) error {
		c, err := liveCandidature(ctx, repos, id)
		if err != nil {
			return err
		}

		next, err := s.validator.Apply(ctx, c.Status, target)
		if err != nil {
			return err
		}

		previous := c.Status
		c.Status = next
		if err := repos.Candidatures().Update(ctx, c); err != nil {
			return err
		}

		details := fmt.Sprintf("%s -> %s", previous, next)
		if comment = strings.TrimSpace(comment); comment != "" {
			details += ": " + comment
		}
		recordAudit(ctx, repos, domain.EntityCandidature, c.ID, domain.ActionStatusChanged, details)

		candidature = c
		return nil
	})
	if err != nil {
		return domain.Candidature{}, err
	}

	if template, ok := domain.CandidatureTemplate(candidature.Status); ok {
		notify(ctx, s.notifier, domain.Notification{
			Template: template,
			To:       []string{candidature.Email},
			Vars: map[string]string{
				"nom":         candidature.Name,
				"reference":   candidature.Reference,
				"commentaire": strings.TrimSpace(comment),
			},
			BCCAdmins: true,
		})
	}

	return candidature, nil
}

// SoftDelete moves a candidature to the trash. Deleting it again reports not found.
func (s *CandidatureService) SoftDelete(ctx context.Context, id int64) error {
	return s.store.InTx(ctx, func(repos domain.Repositories) error {
		c, err := liveCandidature(ctx, repos, id)
		if err != nil {
			return err
		}

		at := now()
		c.DeletedAt = &at
		if err := repos.Candidatures().Update(ctx, c); err != nil {
			return err
		}

		recordAudit(ctx, repos, domain.EntityCandidature, c.ID, domain.ActionSoftDeleted, c.Reference)
		return nil
	})
}

// AddNote attaches an admin note. Invalid notes are rejected before any write.
func (s *CandidatureService) AddNote(ctx context.Context, id int64, body string) (domain.Note, error) {
	if err := domain.ValidateNote(body); err != nil {
		return domain.Note{}, err
	}

	note := domain.Note{CandidatureID: id, Body: body, CreatedAt: now()}

	err := s.store.InTx(ctx, func(repos domain.Repositories) error {
		if _, err := liveCandidature(ctx, repos, id); err != nil {
			return err
		}
		if err := repos.Candidatures().AddNote(ctx, &note); err != nil {
			return err
		}
		recordAudit(ctx, repos, domain.EntityCandidature, id, domain.ActionNoteAdded, fmt.Sprintf("note #%d", note.ID))
		return nil
	})
	if err != nil {
		return domain.Note{}, err
	}
	return note, nil
}

// Notes lists the notes of a live candidature, oldest first.
func (s *CandidatureService) Notes(ctx context.Context, id int64) ([]domain.Note, error) {
	if _, err := liveCandidature(ctx, s.store, id); err != nil {
		return nil, err
	}
	return s.store.Candidatures().ListNotes(ctx, id)
}

func liveCandidature(ctx context.Context, repos domain.Repositories, id int64) (domain.Candidature, error) {
	c, err := repos.Candidatures().GetByID(ctx, id)
	if err != nil {
		return domain.Candidature{}, err
	}
	if c.Deleted() {
		return domain.Candidature{}, domain.ErrCandidatureNotFound
	}
	return c, nil
}
