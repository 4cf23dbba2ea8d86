package domain

import (
	"strings"
	"time"
)

// ContractStatus is the business status of a lease, independent of the trash.
type ContractStatus string

const (
	ContractEnAttente     ContractStatus = "en_attente"
	ContractContratEnvoye ContractStatus = "contrat_envoye"
	ContractValide        ContractStatus = "valide"
	ContractFin           ContractStatus = "fin"
)

// ContractStatuses lists every contract status.
var ContractStatuses = []ContractStatus{
	ContractEnAttente,
	ContractContratEnvoye,
	ContractValide,
	ContractFin,
}

// Valid reports whether s is one of the enumerated statuses.
func (s ContractStatus) Valid() bool {
	for _, known := range ContractStatuses {
		if s == known {
			return true
		}
	}
	return false
}

const trashedSuffix = "_supprime"

// ContractState is the single lifecycle state of a contract. Every status has a
// trashed counterpart, so "closed and deleted" is the explicit state fin_supprime
// rather than two flags that restore logic has to reconcile.
type ContractState string

const (
	ContractStateEnAttente     ContractState = "en_attente"
	ContractStateContratEnvoye ContractState = "contrat_envoye"
	ContractStateValide        ContractState = "valide"
	ContractStateFin           ContractState = "fin"

	ContractStateEnAttenteSupprime     ContractState = "en_attente_supprime"
	ContractStateContratEnvoyeSupprime ContractState = "contrat_envoye_supprime"
	ContractStateValideSupprime        ContractState = "valide_supprime"
	ContractStateFinSupprime           ContractState = "fin_supprime"
)

// StateOf combines a status and the trash flag into a lifecycle state.
func StateOf(status ContractStatus, trashed bool) ContractState {
	if trashed {
		return ContractState(string(status) + trashedSuffix)
	}
	return ContractState(status)
}

// Status returns the business status carried by the state.
func (s ContractState) Status() ContractStatus {
	return ContractStatus(strings.TrimSuffix(string(s), trashedSuffix))
}

// Trashed reports whether the state is one of the soft-deleted states.
func (s ContractState) Trashed() bool {
	return strings.HasSuffix(string(s), trashedSuffix)
}

// ContractEvent represents an action that moves a contract through its lifecycle.
type ContractEvent string

const (
	EventValidate         ContractEvent = "valider"
	EventClose            ContractEvent = "cloturer"
	EventSoftDelete       ContractEvent = "supprimer"
	EventRestoreFromTrash ContractEvent = "restaurer_corbeille"
	EventRestoreClosure   ContractEvent = "restaurer_cloture"
)

// EventResendSignature names the signature reminder in transition errors.
// It never changes the lifecycle state, so it has no entry in ContractTransitions.
const EventResendSignature ContractEvent = "renvoyer_signature"

// ContractTransitions defines all valid lifecycle changes of a contract.
var ContractTransitions = buildContractTransitions()

func buildContractTransitions() []Transition[ContractState, ContractEvent] {
	out := []Transition[ContractState, ContractEvent]{
		{Event: EventValidate, Src: ContractStateEnAttente, Dst: ContractStateValide},
		{Event: EventValidate, Src: ContractStateContratEnvoye, Dst: ContractStateValide},
		{Event: EventClose, Src: ContractStateEnAttente, Dst: ContractStateFin},
		{Event: EventClose, Src: ContractStateContratEnvoye, Dst: ContractStateFin},
		{Event: EventClose, Src: ContractStateValide, Dst: ContractStateFin},
		{Event: EventRestoreClosure, Src: ContractStateFin, Dst: ContractStateValide},
	}
	for _, status := range ContractStatuses {
		out = append(out,
			Transition[ContractState, ContractEvent]{Event: EventSoftDelete, Src: StateOf(status, false), Dst: StateOf(status, true)},
			Transition[ContractState, ContractEvent]{Event: EventRestoreFromTrash, Src: StateOf(status, true), Dst: StateOf(status, false)},
		)
	}
	return out
}

// SignatureLinkTTL is how long a signature link stays valid after it is (re)sent.
const SignatureLinkTTL = 24 * time.Hour

// Contract is a lease between the landlord and the tenant behind a candidature.
type Contract struct {
	ID              int64
	Reference       string
	Status          ContractStatus
	LogementID      int64
	CandidatureID   int64
	StartDate       time.Time
	ExpectedEndDate *time.Time
	SignatureToken  string
	TokenExpiresAt  *time.Time
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// State returns the contract's single lifecycle state.
func (c Contract) State() ContractState {
	return StateOf(c.Status, c.DeletedAt != nil)
}

// Enter moves the contract into state, stamping the deletion time when the
// state is a trashed one and clearing it otherwise.
func (c *Contract) Enter(state ContractState, at time.Time) {
	c.Status = state.Status()
	switch {
	case state.Trashed() && c.DeletedAt == nil:
		c.DeletedAt = &at
	case !state.Trashed():
		c.DeletedAt = nil
	}
}

// Occupies reports whether the contract holds its logement: neither trashed nor closed.
func (c Contract) Occupies() bool {
	return c.DeletedAt == nil && c.Status != ContractFin
}

// AwaitingSignature reports whether a signature link may be (re)sent.
func (c Contract) AwaitingSignature() bool {
	if c.DeletedAt != nil {
		return false
	}
	return c.Status == ContractEnAttente || c.Status == ContractContratEnvoye
}

// NewContract drafts a lease for an accepted candidature in the "en_attente" state.
func NewContract(reference string, candidature Candidature, start time.Time, expectedEnd *time.Time) Contract {
	now := time.Now().UTC()
	return Contract{
		Reference:       reference,
		Status:          ContractEnAttente,
		LogementID:      candidature.LogementID,
		CandidatureID:   candidature.ID,
		StartDate:       start,
		ExpectedEndDate: expectedEnd,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ContractFilter holds optional criteria for listing contracts.
type ContractFilter struct {
	Status         *ContractStatus
	LogementID     int64
	IncludeDeleted bool
	Limit          int
	Offset         int
}
