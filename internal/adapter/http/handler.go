package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/gestloc/internal/app"
	"github.com/neomorfeo/gestloc/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

const dateLayout = "2006-01-02"

// Services groups the application services exposed over HTTP.
type Services struct {
	Logements    *app.LogementService
	Candidatures *app.CandidatureService
	Contracts    *app.ContractService
	Records      *app.RecordService
	Photos       *app.PhotoService
	Documents    *app.DocumentService
	Audit        *app.AuditService
}

// Register adds all JSON API routes to the Huma API.
func Register(api huma.API, svc Services) {
	registerLogements(api, svc.Logements)
	registerCandidatures(api, svc.Candidatures)
	registerContracts(api, svc.Contracts)
	registerRecords(api, svc.Records)
	registerPhotos(api, svc.Photos)
	registerAudit(api, svc.Audit)
}

func formatNullTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}

func formatNullDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// parseDate parses a YYYY-MM-DD body field. An empty value is rejected.
func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: field, Reason: "must be a date (YYYY-MM-DD)"}
	}
	return d, nil
}

// --- Logements ---

// LogementResponse is the API representation of a rental unit.
type LogementResponse struct {
	ID           int64  `json:"id"`
	Reference    string `json:"reference"`
	Address      string `json:"adresse"`
	RentCents    int64  `json:"loyer_cents" doc:"Monthly rent in cents"`
	ChargesCents int64  `json:"charges_cents" doc:"Monthly charges in cents"`
	Status       string `json:"statut"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toLogementResponse(l domain.Logement) LogementResponse {
	return LogementResponse{
		ID:           l.ID,
		Reference:    l.Reference,
		Address:      l.Address,
		RentCents:    l.RentCents,
		ChargesCents: l.ChargesCents,
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt.Format(timestampLayout),
		UpdatedAt:    l.UpdatedAt.Format(timestampLayout),
	}
}

type CreateLogementInput struct {
	Body struct {
		Reference    string `json:"reference,omitempty" maxLength:"50" doc:"Generated when empty"`
		Address      string `json:"adresse" minLength:"1" maxLength:"500"`
		RentCents    int64  `json:"loyer_cents" minimum:"0"`
		ChargesCents int64  `json:"charges_cents,omitempty" minimum:"0"`
	}
}

type LogementOutput struct {
	Body LogementResponse
}

type ListLogementsInput struct {
	Status string `query:"statut" required:"false" enum:"disponible,en_location" doc:"Filter by status"`
	Limit  int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListLogementsOutput struct {
	Body []LogementResponse
}

type IDInput struct {
	ID int64 `path:"id"`
}

func registerLogements(api huma.API, svc *app.LogementService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-logement",
		Method:      http.MethodPost,
		Path:        "/api/v1/logements",
		Summary:     "Create a rental unit",
		Tags:        []string{"Logements"},
	}, func(ctx context.Context, input *CreateLogementInput) (*LogementOutput, error) {
		l, err := svc.Create(ctx, input.Body.Reference, input.Body.Address, input.Body.RentCents, input.Body.ChargesCents)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &LogementOutput{Body: toLogementResponse(l)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-logement",
		Method:      http.MethodGet,
		Path:        "/api/v1/logements/{id}",
		Summary:     "Get a rental unit",
		Tags:        []string{"Logements"},
	}, func(ctx context.Context, input *IDInput) (*LogementOutput, error) {
		l, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &LogementOutput{Body: toLogementResponse(l)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-logements",
		Method:      http.MethodGet,
		Path:        "/api/v1/logements",
		Summary:     "List rental units",
		Tags:        []string{"Logements"},
	}, func(ctx context.Context, input *ListLogementsInput) (*ListLogementsOutput, error) {
		filter := domain.LogementFilter{Limit: input.Limit, Offset: input.Offset}
		if input.Status != "" {
			s := domain.LogementStatus(input.Status)
			filter.Status = &s
		}

		logements, err := svc.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}

		resp := make([]LogementResponse, len(logements))
		for i, l := range logements {
			resp[i] = toLogementResponse(l)
		}
		return &ListLogementsOutput{Body: resp}, nil
	})
}

// --- Audit ---

// AuditEntryResponse is one line of an entity's audit trail.
type AuditEntryResponse struct {
	ID         int64  `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Action     string `json:"action"`
	Details    string `json:"details"`
	ActorIP    string `json:"actor_ip"`
	CreatedAt  string `json:"created_at"`
}

type ListAuditInput struct {
	EntityType string `query:"entity_type" required:"true"`
	EntityID   int64  `query:"entity_id" required:"true"`
	Limit      int    `query:"limit" required:"false" default:"100"`
}

type ListAuditOutput struct {
	Body []AuditEntryResponse
}

func registerAudit(api huma.API, svc *app.AuditService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-audit",
		Method:      http.MethodGet,
		Path:        "/api/v1/audit",
		Summary:     "Read the audit trail of one entity",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ListAuditInput) (*ListAuditOutput, error) {
		entries, err := svc.List(ctx, domain.AuditFilter{
			EntityType: domain.EntityType(input.EntityType),
			EntityID:   input.EntityID,
			Limit:      input.Limit,
		})
		if err != nil {
			return nil, toHumaError(ctx, err)
		}

		resp := make([]AuditEntryResponse, len(entries))
		for i, e := range entries {
			resp[i] = AuditEntryResponse{
				ID:         e.ID,
				EntityType: string(e.EntityType),
				EntityID:   e.EntityID,
				Action:     e.Action,
				Details:    e.Details,
				ActorIP:    e.ActorIP,
				CreatedAt:  e.CreatedAt.Format(timestampLayout),
			}
		}
		return &ListAuditOutput{Body: resp}, nil
	})
}
