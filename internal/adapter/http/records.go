package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/gestloc/internal/app"
	"github.com/neomorfeo/gestloc/internal/domain"
)

// InspectionResponse is an état des lieux.
type InspectionResponse struct {
	ID           int64  `json:"id"`
	ContractID   int64  `json:"contrat_id"`
	Type         string `json:"type"`
	Date         string `json:"date_etat"`
	Observations string `json:"observations"`
	CreatedAt    string `json:"created_at"`
}

func toInspectionResponse(i domain.Inspection) InspectionResponse {
	return InspectionResponse{
		ID:           i.ID,
		ContractID:   i.ContractID,
		Type:         string(i.Type),
		Date:         i.Date.Format(dateLayout),
		Observations: i.Observations,
		CreatedAt:    i.CreatedAt.Format(timestampLayout),
	}
}

// InventoryResponse is the equipment list handed over with the unit.
type InventoryResponse struct {
	ID         int64  `json:"id"`
	ContractID int64  `json:"contrat_id"`
	Type       string `json:"type"`
	Date       string `json:"date_inventaire"`
	Content    string `json:"contenu"`
	CreatedAt  string `json:"created_at"`
}

// ReceiptResponse is a quittance.
type ReceiptResponse struct {
	ID           int64  `json:"id"`
	ContractID   int64  `json:"contrat_id"`
	Reference    string `json:"reference"`
	Month        int    `json:"mois"`
	Year         int    `json:"annee"`
	RentCents    int64  `json:"loyer_cents"`
	ChargesCents int64  `json:"charges_cents"`
	CreatedAt    string `json:"created_at"`
}

// RentTrackingResponse is the payment state of one month of rent.
type RentTrackingResponse struct {
	ID         int64  `json:"id"`
	ContractID int64  `json:"contrat_id"`
	Month      int    `json:"mois"`
	Year       int    `json:"annee"`
	Status     string `json:"statut"`
	CreatedAt  string `json:"created_at"`
}

type AddInspectionInput struct {
	ID   int64 `path:"id" doc:"Contract ID"`
	Body struct {
		Type         string `json:"type" enum:"entree,sortie"`
		Date         string `json:"date" doc:"YYYY-MM-DD"`
		Observations string `json:"observations,omitempty" maxLength:"10000"`
	}
}

type InspectionOutput struct {
	Body InspectionResponse
}

type ListInspectionsOutput struct {
	Body []InspectionResponse
}

type AddInventoryInput struct {
	ID   int64 `path:"id" doc:"Contract ID"`
	Body struct {
		Type    string `json:"type" enum:"entree,sortie"`
		Date    string `json:"date" doc:"YYYY-MM-DD"`
		Content string `json:"contenu,omitempty" maxLength:"10000"`
	}
}

type InventoryOutput struct {
	Body InventoryResponse
}

type ListInventoriesOutput struct {
	Body []InventoryResponse
}

type AddReceiptInput struct {
	ID   int64 `path:"id" doc:"Contract ID"`
	Body struct {
		Month        int   `json:"mois"`
		Year         int   `json:"annee"`
		RentCents    int64 `json:"loyer_cents,omitempty" minimum:"0" doc:"Defaults to the logement's rent"`
		ChargesCents int64 `json:"charges_cents,omitempty" minimum:"0" doc:"Defaults to the logement's charges"`
	}
}

type ReceiptOutput struct {
	Body ReceiptResponse
}

type ListReceiptsOutput struct {
	Body []ReceiptResponse
}

type TrackRentInput struct {
	ID   int64 `path:"id" doc:"Contract ID"`
	Body struct {
		Month  int    `json:"mois"`
		Year   int    `json:"annee"`
		Status string `json:"statut" enum:"attente,paye,impaye"`
	}
}

type RentTrackingOutput struct {
	Body RentTrackingResponse
}

type ListRentTrackingOutput struct {
	Body []RentTrackingResponse
}

func registerRecords(api huma.API, svc *app.RecordService) {
	huma.Register(api, huma.Operation{
		OperationID: "add-inspection",
		Method:      http.MethodPost,
		Path:        "/api/v1/contracts/{id}/inspections",
		Summary:     "Record an état des lieux",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *AddInspectionInput) (*InspectionOutput, error) {
		date, err := parseDate("date", input.Body.Date)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		i, err := svc.AddInspection(ctx, input.ID, domain.InspectionType(input.Body.Type), date, input.Body.Observations)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &InspectionOutput{Body: toInspectionResponse(i)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-inspections",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts/{id}/inspections",
		Summary:     "List the états des lieux of a contract",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *IDInput) (*ListInspectionsOutput, error) {
		items, err := svc.Inspections(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		resp := make([]InspectionResponse, len(items))
		for i, item := range items {
			resp[i] = toInspectionResponse(item)
		}
		return &ListInspectionsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-inspection",
		Method:      http.MethodGet,
		Path:        "/api/v1/inspections/{id}",
		Summary:     "Get an état des lieux",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *IDInput) (*InspectionOutput, error) {
		i, err := svc.GetInspection(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &InspectionOutput{Body: toInspectionResponse(i)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-inventory",
		Method:      http.MethodPost,
		Path:        "/api/v1/contracts/{id}/inventories",
		Summary:     "Record an inventory",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *AddInventoryInput) (*InventoryOutput, error) {
		date, err := parseDate("date", input.Body.Date)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		inv, err := svc.AddInventory(ctx, input.ID, domain.InspectionType(input.Body.Type), date, input.Body.Content)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &InventoryOutput{Body: toInventoryResponse(inv)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-inventories",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts/{id}/inventories",
		Summary:     "List the inventories of a contract",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *IDInput) (*ListInventoriesOutput, error) {
		items, err := svc.Inventories(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		resp := make([]InventoryResponse, len(items))
		for i, item := range items {
			resp[i] = toInventoryResponse(item)
		}
		return &ListInventoriesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-receipt",
		Method:      http.MethodPost,
		Path:        "/api/v1/contracts/{id}/receipts",
		Summary:     "Issue a rent receipt",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *AddReceiptInput) (*ReceiptOutput, error) {
		r, err := svc.AddReceipt(ctx, input.ID, input.Body.Month, input.Body.Year, input.Body.RentCents, input.Body.ChargesCents)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ReceiptOutput{Body: toReceiptResponse(r)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-receipts",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts/{id}/receipts",
		Summary:     "List the receipts of a contract",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *IDInput) (*ListReceiptsOutput, error) {
		items, err := svc.Receipts(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		resp := make([]ReceiptResponse, len(items))
		for i, item := range items {
			resp[i] = toReceiptResponse(item)
		}
		return &ListReceiptsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "track-rent",
		Method:      http.MethodPost,
		Path:        "/api/v1/contracts/{id}/rent",
		Summary:     "Record the payment state of a month of rent",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *TrackRentInput) (*RentTrackingOutput, error) {
		r, err := svc.TrackRent(ctx, input.ID, input.Body.Month, input.Body.Year, domain.RentStatus(input.Body.Status))
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &RentTrackingOutput{Body: toRentTrackingResponse(r)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-rent",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts/{id}/rent",
		Summary:     "List the rent tracking of a contract",
		Tags:        []string{"Records"},
	}, func(ctx context.Context, input *IDInput) (*ListRentTrackingOutput, error) {
		items, err := svc.RentTracking(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		resp := make([]RentTrackingResponse, len(items))
		for i, item := range items {
			resp[i] = toRentTrackingResponse(item)
		}
		return &ListRentTrackingOutput{Body: resp}, nil
	})
}

func toInventoryResponse(i domain.Inventory) InventoryResponse {
	return InventoryResponse{
		ID:         i.ID,
		ContractID: i.ContractID,
		Type:       string(i.Type),
		Date:       i.Date.Format(dateLayout),
		Content:    i.Content,
		CreatedAt:  i.CreatedAt.Format(timestampLayout),
	}
}

func toReceiptResponse(r domain.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:           r.ID,
		ContractID:   r.ContractID,
		Reference:    r.Reference,
		Month:        r.Month,
		Year:         r.Year,
		RentCents:    r.RentCents,
		ChargesCents: r.ChargesCents,
		CreatedAt:    r.CreatedAt.Format(timestampLayout),
	}
}

func toRentTrackingResponse(r domain.RentTracking) RentTrackingResponse {
	return RentTrackingResponse{
		ID:         r.ID,
		ContractID: r.ContractID,
		Month:      r.Month,
		Year:       r.Year,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt.Format(timestampLayout),
	}
}
