package domain

import (
	"context"
	"time"
)

// LogementRepository defines the persistence contract for rental units.
type LogementRepository interface {
	Create(ctx context.Context, l *Logement) error
	GetByID(ctx context.Context, id int64) (Logement, error)
	List(ctx context.Context, filter LogementFilter) ([]Logement, error)
	SetStatus(ctx context.Context, id int64, status LogementStatus) error
}

// CandidatureRepository defines the persistence contract for candidatures.
// GetByID returns soft-deleted rows too; callers decide what deletion means.
type CandidatureRepository interface {
	Create(ctx context.Context, c *Candidature) error
	GetByID(ctx context.Context, id int64) (Candidature, error)
	List(ctx context.Context, filter CandidatureFilter) ([]Candidature, error)
	Update(ctx context.Context, c Candidature) error
	AddNote(ctx context.Context, n *Note) error
	ListNotes(ctx context.Context, candidatureID int64) ([]Note, error)
}

// ContractRepository defines the persistence contract for contracts.
type ContractRepository interface {
	Create(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, id int64) (Contract, error)
	List(ctx context.Context, filter ContractFilter) ([]Contract, error)
	Update(ctx context.Context, c Contract) error
	// CountOccupying counts contracts holding the logement, ignoring excludeID.
	CountOccupying(ctx context.Context, logementID, excludeID int64) (int, error)
	// CountForCandidature counts untrashed contracts of the candidature, ignoring excludeID.
	CountForCandidature(ctx context.Context, candidatureID, excludeID int64) (int, error)
}

// RecordRepository persists the records a contract owns: inspections,
// inventories, receipts and rent tracking.
type RecordRepository interface {
	CreateInspection(ctx context.Context, i *Inspection) error
	GetInspection(ctx context.Context, id int64) (Inspection, error)
	ListInspections(ctx context.Context, contractID int64) ([]Inspection, error)
	CreateInventory(ctx context.Context, i *Inventory) error
	ListInventories(ctx context.Context, contractID int64) ([]Inventory, error)
	CreateReceipt(ctx context.Context, r *Receipt) error
	ListReceipts(ctx context.Context, contractID int64) ([]Receipt, error)
	CreateRentTracking(ctx context.Context, r *RentTracking) error
	ListRentTracking(ctx context.Context, contractID int64) ([]RentTracking, error)

	// SoftDeleteForContract stamps every live record of the contract with at.
	SoftDeleteForContract(ctx context.Context, contractID int64, at time.Time) error
	// RestoreForContract clears the deletion of records stamped exactly at.
	RestoreForContract(ctx context.Context, contractID int64, at time.Time) error
}

// PhotoRepository persists inspection photo metadata.
type PhotoRepository interface {
	Create(ctx context.Context, p *Photo) error
	GetByID(ctx context.Context, id int64) (Photo, error)
	ListByInspection(ctx context.Context, inspectionID int64) ([]Photo, error)
	Delete(ctx context.Context, id int64) error
}

// AuditRepository appends to and reads the audit trail. Entries are never updated.
type AuditRepository interface {
	Append(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}

// Repositories groups every repository bound to one connection or transaction.
type Repositories interface {
	Logements() LogementRepository
	Candidatures() CandidatureRepository
	Contracts() ContractRepository
	Records() RecordRepository
	Photos() PhotoRepository
	Audit() AuditRepository
}

// Store is the persistence gateway. InTx runs fn inside one transaction and
// rolls back if fn returns an error.
type Store interface {
	Repositories
	InTx(ctx context.Context, fn func(Repositories) error) error
}

// TransitionValidator checks lifecycle events against a transition table.
type TransitionValidator[S ~string, E ~string] interface {
	Apply(ctx context.Context, current S, event E) (S, error)
}

// Notifier dispatches templated emails. Failures are reported, never retried.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// DocumentRenderer produces PDF files and returns their temporary path.
// The caller removes the file once it has been served.
type DocumentRenderer interface {
	RenderContract(ctx context.Context, doc ContractDocument) (string, error)
	RenderInspection(ctx context.Context, doc InspectionDocument) (string, error)
}

// FileStorage stores uploaded files under relative paths.
type FileStorage interface {
	Save(ctx context.Context, rel string, data []byte) error
	Remove(rel string) error
}
