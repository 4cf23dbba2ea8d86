package domain

import (
	"context"
	"time"
)

// EntityType names the kind of record an audit entry is about.
type EntityType string

const (
	EntityLogement     EntityType = "logement"
	EntityCandidature  EntityType = "candidature"
	EntityContract     EntityType = "contrat"
	EntityInspection   EntityType = "etat_des_lieux"
	EntityInventory    EntityType = "inventaire"
	EntityReceipt      EntityType = "quittance"
	EntityRentTracking EntityType = "loyer_tracking"
)

// Audit actions, one per logical operation.
const (
	ActionCreated         = "creation"
	ActionStatusChanged   = "statut_modifie"
	ActionNoteAdded       = "note_ajoutee"
	ActionSoftDeleted     = "suppression"
	ActionClosed          = "fin_contrat"
	ActionValidated       = "validation"
	ActionRestoredTrash   = "restauration_corbeille"
	ActionRestoredClosure = "restauration_cloture"
	ActionSignatureResent = "renvoi_signature"
	ActionInspectionAdded = "etat_des_lieux_ajoute"
	ActionInventoryAdded  = "inventaire_ajoute"
	ActionReceiptAdded    = "quittance_ajoutee"
	ActionRentTracked     = "loyer_suivi"
	ActionPhotoAdded      = "photo_ajoutee"
	ActionPhotoDeleted    = "photo_supprimee"
)

// AuditEntry is an immutable record of one action on one entity.
type AuditEntry struct {
	ID         int64
	EntityType EntityType
	EntityID   int64
	Action     string
	Details    string
	ActorIP    string
	CreatedAt  time.Time
}

// AuditFilter selects the audit trail of one entity.
type AuditFilter struct {
	EntityType EntityType
	EntityID   int64
	Limit      int
}

// Actor is the authenticated principal behind a request.
type Actor struct {
	Email     string
	IP        string
	ExpiresAt time.Time
}

type actorKey struct{}

// WithActor returns a context carrying the request's actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored in ctx, or the zero Actor.
func ActorFrom(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return Actor{}
}
