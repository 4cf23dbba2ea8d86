package domain

import "time"

// InspectionType distinguishes move-in from move-out records.
type InspectionType string

const (
	InspectionEntree InspectionType = "entree"
	InspectionSortie InspectionType = "sortie"
)

// Valid reports whether t is a known inspection type.
func (t InspectionType) Valid() bool {
	return t == InspectionEntree || t == InspectionSortie
}

// Inspection is an "état des lieux": the condition of the unit at move-in or move-out.
type Inspection struct {
	ID           int64
	ContractID   int64
	Type         InspectionType
	Date         time.Time
	Observations string
	DeletedAt    *time.Time
	CreatedAt    time.Time
}

// Inventory itemizes the equipment handed over with the unit.
type Inventory struct {
	ID         int64
	ContractID int64
	Type       InspectionType
	Date       time.Time
	Content    string
	DeletedAt  *time.Time
	CreatedAt  time.Time
}

// Receipt is a "quittance": proof that a month's rent was paid.
type Receipt struct {
	ID           int64
	ContractID   int64
	Reference    string
	Month        int
	Year         int
	RentCents    int64
	ChargesCents int64
	DeletedAt    *time.Time
	CreatedAt    time.Time
}

// RentStatus is the payment state of one month of rent.
type RentStatus string

const (
	RentAttente RentStatus = "attente"
	RentPaye    RentStatus = "paye"
	RentImpaye  RentStatus = "impaye"
)

// Valid reports whether s is a known rent status.
func (s RentStatus) Valid() bool {
	return s == RentAttente || s == RentPaye || s == RentImpaye
}

// RentTracking records whether one month of rent has been paid.
type RentTracking struct {
	ID         int64
	ContractID int64
	Month      int
	Year       int
	Status     RentStatus
	DeletedAt  *time.Time
	CreatedAt  time.Time
}

// ValidatePeriod checks a month/year pair used by receipts and rent tracking.
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return &ValidationError{Field: "mois", Reason: "must be between 1 and 12"}
	}
	if year < 2000 || year > 2100 {
		return &ValidationError{Field: "annee", Reason: "must be between 2000 and 2100"}
	}
	return nil
}
