package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// CandidatureStatus represents where a rental application stands.
type CandidatureStatus string

const (
	CandidatureEnAttente       CandidatureStatus = "en_attente"
	CandidatureAccepte         CandidatureStatus = "accepte"
	CandidatureRefuse          CandidatureStatus = "refuse"
	CandidatureVisitePlanifiee CandidatureStatus = "visite_planifiee"
	CandidatureContratEnvoye   CandidatureStatus = "contrat_envoye"
	CandidatureContratSigne    CandidatureStatus = "contrat_signe"
)

// CandidatureStatuses lists every known candidature status.
var CandidatureStatuses = []CandidatureStatus{
	CandidatureEnAttente,
	CandidatureAccepte,
	CandidatureRefuse,
	CandidatureVisitePlanifiee,
	CandidatureContratEnvoye,
	CandidatureContratSigne,
}

// Valid reports whether s is one of the enumerated statuses.
func (s CandidatureStatus) Valid() bool {
	for _, known := range CandidatureStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CandidatureTransitions defines every status change an administrator may request.
// The event is named after the target status.
var CandidatureTransitions = []Transition[CandidatureStatus, CandidatureStatus]{
	{Event: CandidatureAccepte, Src: CandidatureEnAttente, Dst: CandidatureAccepte},
	{Event: CandidatureAccepte, Src: CandidatureVisitePlanifiee, Dst: CandidatureAccepte},
	{Event: CandidatureAccepte, Src: CandidatureRefuse, Dst: CandidatureAccepte},
	{Event: CandidatureAccepte, Src: CandidatureContratEnvoye, Dst: CandidatureAccepte},
	{Event: CandidatureRefuse, Src: CandidatureEnAttente, Dst: CandidatureRefuse},
	{Event: CandidatureRefuse, Src: CandidatureVisitePlanifiee, Dst: CandidatureRefuse},
	{Event: CandidatureRefuse, Src: CandidatureAccepte, Dst: CandidatureRefuse},
	{Event: CandidatureVisitePlanifiee, Src: CandidatureEnAttente, Dst: CandidatureVisitePlanifiee},
	{Event: CandidatureVisitePlanifiee, Src: CandidatureAccepte, Dst: CandidatureVisitePlanifiee},
	{Event: CandidatureEnAttente, Src: CandidatureRefuse, Dst: CandidatureEnAttente},
	{Event: CandidatureEnAttente, Src: CandidatureVisitePlanifiee, Dst: CandidatureEnAttente},
	{Event: CandidatureContratEnvoye, Src: CandidatureAccepte, Dst: CandidatureContratEnvoye},
	{Event: CandidatureContratSigne, Src: CandidatureContratEnvoye, Dst: CandidatureContratSigne},
}

// Candidature is a rental application submitted by a prospective tenant.
type Candidature struct {
	ID         int64
	Reference  string
	Name       string
	Email      string
	LogementID int64
	Status     CandidatureStatus
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Deleted reports whether the candidature sits in the trash.
func (c Candidature) Deleted() bool {
	return c.DeletedAt != nil
}

// NewCandidature creates an application in the initial "en_attente" state.
func NewCandidature(reference, name, email string, logementID int64) Candidature {
	now := time.Now().UTC()
	return Candidature{
		Reference:  reference,
		Name:       name,
		Email:      email,
		LogementID: logementID,
		Status:     CandidatureEnAttente,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CandidatureFilter holds optional criteria for listing candidatures.
type CandidatureFilter struct {
	Status         *CandidatureStatus
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// MaxNoteLength is the largest admin note accepted, counted in characters.
const MaxNoteLength = 5000

// Note is a freeform comment an administrator attaches to a candidature.
type Note struct {
	ID            int64
	CandidatureID int64
	Body          string
	CreatedAt     time.Time
}

// ValidateNote rejects empty notes and notes longer than MaxNoteLength characters.
func ValidateNote(body string) error {
	if strings.TrimSpace(body) == "" {
		return &ValidationError{Field: "note", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(body) > MaxNoteLength {
		return &ValidationError{Field: "note", Reason: "must not exceed 5000 characters"}
	}
	return nil
}

// CandidatureTemplate returns the notification template sent when a candidature
// enters the given status. Statuses without a template notify nobody.
func CandidatureTemplate(status CandidatureStatus) (string, bool) {
	switch status {
	case CandidatureAccepte:
		return TemplateCandidatureAcceptee, true
	case CandidatureRefuse:
		return TemplateCandidatureRefusee, true
	case CandidatureVisitePlanifiee:
		return TemplateVisitePlanifiee, true
	default:
		return "", false
	}
}
