package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// ContractValidator validates contract lifecycle events.
type ContractValidator = domain.TransitionValidator[domain.ContractState, domain.ContractEvent]

// ContractService orchestrates the lease lifecycle. Every operation mutates the
// contract and its dependents in one transaction with one audit entry.
type ContractService struct {
	store        domain.Store
	contracts    ContractValidator
	candidatures CandidatureValidator
	notifier     domain.Notifier
	baseURL      string
}

// NewContractService creates a service with the given adapters. baseURL prefixes
// the signature links sent to tenants.
func NewContractService(store domain.Store, contracts ContractValidator, candidatures CandidatureValidator, notifier domain.Notifier, baseURL string) *ContractService {
	return &ContractService{
		store:        store,
		contracts:    contracts,
		candidatures: candidatures,
		notifier:     notifier,
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

// Create drafts a lease for an accepted candidature, reserves the logement and
// sends the signature link.
func (s *ContractService) Create(ctx context.Context, candidatureID int64, start time.Time, expectedEnd *time.Time) (domain.Contract, error) {
	if start.IsZero() {
		return domain.Contract{}, &domain.ValidationError{Field: "date_debut", Reason: "is required"}
	}
	if expectedEnd != nil && !expectedEnd.After(start) {
		return domain.Contract{}, &domain.ValidationError{Field: "date_fin_prevue", Reason: "must be after date_debut"}
	}

	ref, err := newReference("BAIL")
	if err != nil {
		return domain.Contract{}, fmt.Errorf("generating contract reference: %w", err)
	}
	token, err := newToken()
	if err != nil {
		return domain.Contract{}, fmt.Errorf("generating signature token: %w", err)
	}

	var contract domain.Contract
	var candidature domain.Candidature
	err = s.store.InTx(ctx, func(repos domain.Repositories) error {
		cand, err := liveCandidature(ctx, repos, candidatureID)
		if err != nil {
			return err
		}

		nextStatus, err := s.candidatures.Apply(ctx, cand.Status, domain.CandidatureContratEnvoye)
		if err != nil {
			return err
		}

		if err := ensureVacant(ctx, repos, cand.LogementID, 0); err != nil {
			return err
		}

		at := now()
		expires := at.Add(domain.SignatureLinkTTL)
		c := domain.NewContract(ref, cand, start, expectedEnd)
		c.SignatureToken = token
		c.TokenExpiresAt = &expires
		if err := repos.Contracts().Create(ctx, &c); err != nil {
			return err
		}

		if err := repos.Logements().SetStatus(ctx, c.LogementID, domain.LogementEnLocation); err != nil {
			return err
		}

		cand.Status = nextStatus
		if err := repos.Candidatures().Update(ctx, cand); err != nil {
			return err
		}

		recordAudit(ctx, repos, domain.EntityContract, c.ID, domain.ActionCreated,
			fmt.Sprintf("%s for candidature %s", c.Reference, cand.Reference))

		contract, candidature = c, cand
		return nil
	})
	if err != nil {
		return domain.Contract{}, err
	}

	s.sendSignatureLink(ctx, contract, candidature)
	return contract, nil
}

// GetByID returns a contract, trashed or not.
func (s *ContractService) GetByID(ctx context.Context, id int64) (domain.Contract, error) {
	return s.store.Contracts().GetByID(ctx, id)
}

// List returns contracts matching the filter.
func (s *ContractService) List(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	return s.store.Contracts().List(ctx, filter)
}

// Validate records the tenant's signature.
func (s *ContractService) Validate(ctx context.Context, id int64) (domain.Contract, error) {
	return s.transition(ctx, id, domain.EventValidate, func(repos domain.Repositories, before, after domain.Contract) (string, error) {
		if err := setCandidatureStatus(ctx, repos, after.CandidatureID, domain.CandidatureContratSigne); err != nil {
			return "", err
		}
		return domain.ActionValidated, nil
	})
}

// Close ends the lease and frees the logement. Closing twice is a transition error.
func (s *ContractService) Close(ctx context.Context, id int64) (domain.Contract, error) {
	return s.transition(ctx, id, domain.EventClose, func(repos domain.Repositories, before, after domain.Contract) (string, error) {
		if err := repos.Logements().SetStatus(ctx, after.LogementID, domain.LogementDisponible); err != nil {
			return "", err
		}
		return domain.ActionClosed, nil
	})
}

// SoftDelete moves the contract and its live dependents to the trash with one
// shared timestamp. An active contract also frees the logement and returns the
// candidature to "accepte" so a new lease can be drafted; a closed one leaves
// both alone.
func (s *ContractService) SoftDelete(ctx context.Context, id int64) (domain.Contract, error) {
	return s.transition(ctx, id, domain.EventSoftDelete, func(repos domain.Repositories, before, after domain.Contract) (string, error) {
		if err := repos.Records().SoftDeleteForContract(ctx, after.ID, *after.DeletedAt); err != nil {
			return "", err
		}
		if !before.Occupies() {
			return domain.ActionSoftDeleted, nil
		}
		if err := repos.Logements().SetStatus(ctx, after.LogementID, domain.LogementDisponible); err != nil {
			return "", err
		}
		if err := setCandidatureStatus(ctx, repos, after.CandidatureID, domain.CandidatureAccepte); err != nil {
			return "", err
		}
		return domain.ActionSoftDeleted, nil
	})
}

// RestoreFromTrash brings a trashed contract back with the dependents deleted
// alongside it. It conflicts when the candidature was given another lease in
// the meantime. Unless the contract was closed, it takes the logement again and
// puts the candidature back where the contract left it.
func (s *ContractService) RestoreFromTrash(ctx context.Context, id int64) (domain.Contract, error) {
	return s.transition(ctx, id, domain.EventRestoreFromTrash, func(repos domain.Repositories, before, after domain.Contract) (string, error) {
		if err := ensureCandidatureFree(ctx, repos, after.CandidatureID, after.ID); err != nil {
			return "", err
		}
		if err := repos.Records().RestoreForContract(ctx, after.ID, *before.DeletedAt); err != nil {
			return "", err
		}
		if !after.Occupies() {
			return domain.ActionRestoredTrash, nil
		}
		if err := ensureVacant(ctx, repos, after.LogementID, after.ID); err != nil {
			return "", err
		}
		if err := repos.Logements().SetStatus(ctx, after.LogementID, domain.LogementEnLocation); err != nil {
			return "", err
		}
		if err := setCandidatureStatus(ctx, repos, after.CandidatureID, candidatureStatusFor(after)); err != nil {
			return "", err
		}
		return domain.ActionRestoredTrash, nil
	})
}

// RestoreFromClosure reopens a closed contract as "valide".
func (s *ContractService) RestoreFromClosure(ctx context.Context, id int64) (domain.Contract, error) {
	return s.transition(ctx, id, domain.EventRestoreClosure, func(repos domain.Repositories, before, after domain.Contract) (string, error) {
		if err := ensureVacant(ctx, repos, after.LogementID, after.ID); err != nil {
			return "", err
		}
		if err := repos.Logements().SetStatus(ctx, after.LogementID, domain.LogementEnLocation); err != nil {
			return "", err
		}
		return domain.ActionRestoredClosure, nil
	})
}

// Restore undoes whichever of trash or closure applies. An active contract has
// nothing to restore and yields a transition error.
func (s *ContractService) Restore(ctx context.Context, id int64) (domain.Contract, error) {
	c, err := s.store.Contracts().GetByID(ctx, id)
	if err != nil {
		return domain.Contract{}, err
	}

	switch state := c.State(); {
	case state.Trashed():
		return s.RestoreFromTrash(ctx, id)
	case state == domain.ContractStateFin:
		return s.RestoreFromClosure(ctx, id)
	default:
		return domain.Contract{}, &domain.TransitionError{
			Entity:  string(domain.EntityContract),
			Event:   "restaurer",
			Current: string(state),
		}
	}
}

// ResendSignatureLink refreshes the signature link's expiry, creating a token
// if none exists, and emails it again.
func (s *ContractService) ResendSignatureLink(ctx context.Context, id int64) (domain.Contract, error) {
	var contract domain.Contract
	var candidature domain.Candidature
	err := s.store.InTx(ctx, func(repos domain.Repositories) error {
		c, err := repos.Contracts().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c.State().Trashed() {
			return domain.ErrContractNotFound
		}
		if !c.AwaitingSignature() {
			return &domain.TransitionError{
				Entity:  string(domain.EntityContract),
				Event:   string(domain.EventResendSignature),
				Current: string(c.State()),
			}
		}

		if c.SignatureToken == "" {
			token, err := newToken()
			if err != nil {
				return fmt.Errorf("generating signature token: %w", err)
			}
			c.SignatureToken = token
		}
		expires := now().Add(domain.SignatureLinkTTL)
		c.TokenExpiresAt = &expires

		if err := repos.Contracts().Update(ctx, c); err != nil {
			return err
		}

		cand, err := repos.Candidatures().GetByID(ctx, c.CandidatureID)
		if err != nil {
			return err
		}

		recordAudit(ctx, repos, domain.EntityContract, c.ID, domain.ActionSignatureResent,
			"expires "+expires.Format(time.RFC3339))

		contract, candidature = c, cand
		return nil
	})
	if err != nil {
		return domain.Contract{}, err
	}

	s.sendSignatureLink(ctx, contract, candidature)
	return contract, nil
}

// sideEffect applies the dependents' changes of one transition and returns the
// audit action that describes it.
type sideEffect func(repos domain.Repositories, before, after domain.Contract) (string, error)

// transition loads the contract, validates event against its state, persists
// the new state and runs effect, all in one transaction. Outside of restores,
// a trashed contract is reported as not found.
func (s *ContractService) transition(ctx context.Context, id int64, event domain.ContractEvent, effect sideEffect) (domain.Contract, error) {
	var contract domain.Contract
	err := s.store.InTx(ctx, func(repos domain.Repositories) error {
		before, err := repos.Contracts().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if before.State().Trashed() && !isRestore(event) {
			return domain.ErrContractNotFound
		}

		next, err := s.contracts.Apply(ctx, before.State(), event)
		if err != nil {
			return err
		}

		after := before
		after.Enter(next, now())
		if err := repos.Contracts().Update(ctx, after); err != nil {
			return err
		}

		action, err := effect(repos, before, after)
		if err != nil {
			return err
		}

		recordAudit(ctx, repos, domain.EntityContract, after.ID, action,
			fmt.Sprintf("%s -> %s", before.State(), after.State()))

		contract = after
		return nil
	})
	if err != nil {
		return domain.Contract{}, err
	}
	return contract, nil
}

func (s *ContractService) sendSignatureLink(ctx context.Context, c domain.Contract, cand domain.Candidature) {
	notify(ctx, s.notifier, domain.Notification{
		Template: domain.TemplateContratSignature,
		To:       []string{cand.Email},
		Vars: map[string]string{
			"nom":       cand.Name,
			"reference": c.Reference,
			"lien":      s.baseURL + "/signature/" + c.SignatureToken,
			"expire":    c.TokenExpiresAt.Format("02/01/2006 15:04"),
		},
		BCCAdmins: true,
	})
}

func isRestore(event domain.ContractEvent) bool {
	return event == domain.EventRestoreFromTrash || event == domain.EventRestoreClosure
}

// ensureVacant fails with a conflict when another contract holds the logement.
func ensureVacant(ctx context.Context, repos domain.Repositories, logementID, excludeID int64) error {
	n, err := repos.Contracts().CountOccupying(ctx, logementID, excludeID)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.ConflictError{Reason: fmt.Sprintf("logement %d already has an active contract", logementID)}
	}
	return nil
}

// ensureCandidatureFree fails with a conflict when the candidature has another
// untrashed contract.
func ensureCandidatureFree(ctx context.Context, repos domain.Repositories, candidatureID, excludeID int64) error {
	n, err := repos.Contracts().CountForCandidature(ctx, candidatureID, excludeID)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.ConflictError{Reason: fmt.Sprintf("candidature %d already has another contract", candidatureID)}
	}
	return nil
}

// candidatureStatusFor is the candidature status matching an active contract.
func candidatureStatusFor(c domain.Contract) domain.CandidatureStatus {
	if c.Status == domain.ContractValide {
		return domain.CandidatureContratSigne
	}
	return domain.CandidatureContratEnvoye
}

// setCandidatureStatus writes a compensating status without going through the
// admin transition table.
func setCandidatureStatus(ctx context.Context, repos domain.Repositories, id int64, status domain.CandidatureStatus) error {
	c, err := repos.Candidatures().GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.Status = status
	return repos.Candidatures().Update(ctx, c)
}
