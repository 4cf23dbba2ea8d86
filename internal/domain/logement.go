package domain

import "time"

// LogementStatus tells whether a rental unit can take a new tenant.
type LogementStatus string

const (
	LogementDisponible LogementStatus = "disponible"
	LogementEnLocation LogementStatus = "en_location"
)

// Logement is a rental unit. It is referenced, never owned, by contracts.
type Logement struct {
	ID           int64
	Reference    string
	Address      string
	RentCents    int64
	ChargesCents int64
	Status       LogementStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLogement creates an available rental unit.
func NewLogement(reference, address string, rentCents, chargesCents int64) Logement {
	now := time.Now().UTC()
	return Logement{
		Reference:    reference,
		Address:      address,
		RentCents:    rentCents,
		ChargesCents: chargesCents,
		Status:       LogementDisponible,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// LogementFilter holds optional criteria for listing logements.
type LogementFilter struct {
	Status *LogementStatus
	Limit  int
	Offset int
}
