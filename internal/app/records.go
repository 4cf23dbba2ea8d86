package app

import (
	"context"
	"fmt"
	"time"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// RecordService manages the records a contract owns: inspections,
// inventories, receipts and rent tracking.
type RecordService struct {
	store domain.Store
}

// NewRecordService creates a service over the given store.
func NewRecordService(store domain.Store) *RecordService {
	return &RecordService{store: store}
}

// AddInspection records an état des lieux on a live contract.
func (s *RecordService) AddInspection(ctx context.Context, contractID int64, kind domain.InspectionType, date time.Time, observations string) (domain.Inspection, error) {
	if !kind.Valid() {
		return domain.Inspection{}, &domain.ValidationError{Field: "type", Reason: "must be entree or sortie"}
	}
	if date.IsZero() {
		return domain.Inspection{}, &domain.ValidationError{Field: "date_etat", Reason: "is required"}
	}

	inspection := domain.Inspection{
		ContractID:   contractID,
		Type:         kind,
		Date:         date,
		Observations: observations,
		CreatedAt:    now(),
	}

	err := s.store.InTx(ctx, func(repos domain.Repositories) error {
		if _, err := liveContract(ctx, repos, contractID); err != nil {
			return err
		}
		if err := repos.Records().CreateInspection(ctx, &inspection); err != nil {
			return err
		}
		recordAudit(ctx, repos, domain.EntityContract, contractID, domain.ActionInspectionAdded,
			fmt.Sprintf("etat des lieux #%d (%s)", inspection.ID, kind))
		return nil
	})
	if err != nil {
		return domain.Inspection{}, err
	}
	return inspection, nil
}

// GetInspection returns a live inspection.
func (s *RecordService) GetInspection(ctx context.Context, id int64) (domain.Inspection, error) {
	return liveInspection(ctx, s.store, id)
}

// Inspections lists the live inspections of a contract.
func (s *RecordService) Inspections(ctx context.Context, contractID int64) ([]domain.Inspection, error) {
	if _, err := s.store.Contracts().GetByID(ctx, contractID); err != nil {
		return nil, err
	}
	return s.store.Records().ListInspections(ctx, contractID)
}

// AddInventory records an equipment inventory on a live contract.
func (s *RecordService) AddInventory(ctx context.Context, contractID int64, kind domain.InspectionType, date time.Time, content string) (domain.Inventory, error) {
	if !kind.Valid() {
		return domain.Inventory{}, &domain.ValidationError{Field: "type", Reason: "must be entree or sortie"}
	}
	if date.IsZero() {
		return domain.Inventory{}, &domain.ValidationError{Field: "date_inventaire", Reason: "is required"}
	}

	inventory := domain.Inventory{
		ContractID: contractID,
		Type:       kind,
		Date:       date,
		Content:    content,
		CreatedAt:  now(),
	}

	err := s.store.InTx(ctx, func(repos domain.Repositories) error {
		if _, err := liveContract(ctx, repos, contractID); err != nil {
			return err
		}
		if err := repos.Records().CreateInventory(ctx, &inventory); err != nil {
			return err
		}
		recordAudit(ctx, repos, domain.EntityContract, contractID, domain.ActionInventoryAdded,
			fmt.Sprintf("inventaire #%d (%s)", inventory.ID, kind))
		return nil
	})
	if err != nil {
		return domain.Inventory{}, err
	}
	return inventory, nil
}

// Inventories lists the live inventories of a contract.
func (s *RecordService) Inventories(ctx context.Context, contractID int64) ([]domain.Inventory, error) {
	if _, err := s.store.Contracts().GetByID(ctx, contractID); err != nil {
		return nil, err
	}
	return s.store.Records().ListInventories(ctx, contractID)
}

// AddReceipt issues a quittance for one month. Zero amounts default to the
// logement's rent and charges.
func (s *RecordService) AddReceipt(ctx context.Context, contractID int64, month, year int, rentCents, chargesCents int64) (domain.Receipt, error) {
	if err := domain.ValidatePeriod(month, year); err != nil {
		return domain.Receipt{}, err
	}
	if rentCents < 0 || chargesCents < 0 {
		return domain.Receipt{}, &domain.ValidationError{Field: "montant", Reason: "must not be negative"}
	}

	var receipt domain.Receipt
	err := s.store.InTx(ctx, func(repos domain.Repositories) error {
		c, err := liveContract(ctx, repos, contractID)
		if err != nil {
			return err
		}

		if rentCents == 0 && chargesCents == 0 {
			l, err := repos.Logements().GetByID(ctx, c.LogementID)
			if err != nil {
				return err
			}
			rentCents, chargesCents = l.RentCents, l.ChargesCents
		}

		receipt = domain.Receipt{
			ContractID:   contractID,
			Reference:    fmt.Sprintf("Q-%s-%04d%02d", c.Reference, year, month),
			Month:        month,
			Year:         year,
			RentCents:    rentCents,
			ChargesCents: chargesCents,
			CreatedAt:    now(),
		}
		if err := repos.Records().CreateReceipt(ctx, &receipt); err != nil {
			return err
		}
		recordAudit(ctx, repos, domain.EntityContract, contractID, domain.ActionReceiptAdded, receipt.Reference)
		return nil
	})
	if err != nil {
		return domain.Receipt{}, err
	}
	return receipt, nil
}

// Receipts lists the live receipts of a contract.
func (s *RecordService) Receipts(ctx context.Context, contractID int64) ([]domain.Receipt, error) {
	if _, err := s.store.Contracts().GetByID(ctx, contractID); err != nil {
		return nil, err
	}
	return s.store.Records().ListReceipts(ctx, contractID)
}

// TrackRent records the payment state of one month of rent.
func (s *RecordService) TrackRent(ctx context.Context, contractID int64, month, year int, status domain.RentStatus) (domain.RentTracking, error) {
	if err := domain.ValidatePeriod(month, year); err != nil {
		return domain.RentTracking{}, err
	}
	if !status.Valid() {
		return domain.RentTracking{}, &domain.ValidationError{Field: "statut", Reason: "must be attente, paye or impaye"}
	}

	tracking := domain.RentTracking{
		ContractID: contractID,
		Month:      month,
		Year:       year,
		Status:     status,
		CreatedAt:  now(),
	}

	err := s.store.InTx(ctx, func(repos domain.Repositories) error {
		if _, err := liveContract(ctx, repos, contractID); err != nil {
			return err
		}
		if err := repos.Records().CreateRentTracking(ctx, &tracking); err != nil {
			return err
		}
		recordAudit(ctx, repos, domain.EntityContract, contractID, domain.ActionRentTracked,
			fmt.Sprintf("%02d/%04d %s", month, year, status))
		return nil
	})
	if err != nil {
		return domain.RentTracking{}, err
	}
	return tracking, nil
}

// RentTracking lists the live rent-tracking rows of a contract.
func (s *RecordService) RentTracking(ctx context.Context, contractID int64) ([]domain.RentTracking, error) {
	if _, err := s.store.Contracts().GetByID(ctx, contractID); err != nil {
		return nil, err
	}
	return s.store.Records().ListRentTracking(ctx, contractID)
}

func liveContract(ctx context.Context, repos domain.Repositories, id int64) (domain.Contract, error) {
	c, err := repos.Contracts().GetByID(ctx, id)
	if err != nil {
		return domain.Contract{}, err
	}
	if c.State().Trashed() {
		return domain.Contract{}, domain.ErrContractNotFound
	}
	return c, nil
}

func liveInspection(ctx context.Context, repos domain.Repositories, id int64) (domain.Inspection, error) {
	i, err := repos.Records().GetInspection(ctx, id)
	if err != nil {
		return domain.Inspection{}, err
	}
	if i.DeletedAt != nil {
		return domain.Inspection{}, domain.ErrInspectionNotFound
	}
	return i, nil
}
