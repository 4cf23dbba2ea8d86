package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/gestloc/internal/app"
	"github.com/neomorfeo/gestloc/internal/domain"
)

// ContractResponse is the API representation of a lease. The signature token
// itself is never exposed; only whether one is pending and until when.
type ContractResponse struct {
	ID               int64   `json:"id"`
	Reference        string  `json:"reference"`
	Status           string  `json:"statut"`
	State            string  `json:"etat" doc:"Lifecycle state, including the trashed variants"`
	LogementID       int64   `json:"logement_id"`
	CandidatureID    int64   `json:"candidature_id"`
	StartDate        string  `json:"date_debut"`
	ExpectedEndDate  *string `json:"date_fin_prevue,omitempty"`
	SignaturePending bool    `json:"signature_en_attente"`
	TokenExpiresAt   *string `json:"token_expires_at,omitempty"`
	DeletedAt        *string `json:"deleted_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func toContractResponse(c domain.Contract) ContractResponse {
	return ContractResponse{
		ID:               c.ID,
		Reference:        c.Reference,
		Status:           string(c.Status),
		State:            string(c.State()),
		LogementID:       c.LogementID,
		CandidatureID:    c.CandidatureID,
		StartDate:        c.StartDate.Format(dateLayout),
		ExpectedEndDate:  formatNullDate(c.ExpectedEndDate),
		SignaturePending: c.SignatureToken != "" && c.AwaitingSignature(),
		TokenExpiresAt:   formatNullTime(c.TokenExpiresAt),
		DeletedAt:        formatNullTime(c.DeletedAt),
		CreatedAt:        c.CreatedAt.Format(timestampLayout),
		UpdatedAt:        c.UpdatedAt.Format(timestampLayout),
	}
}

type CreateContractInput struct {
	Body struct {
		CandidatureID   int64  `json:"candidature_id"`
		StartDate       string `json:"date_debut" doc:"YYYY-MM-DD"`
		ExpectedEndDate string `json:"date_fin_prevue,omitempty" doc:"YYYY-MM-DD"`
	}
}

type ContractOutput struct {
	Body ContractResponse
}

type ListContractsInput struct {
	Status         string `query:"statut" required:"false" enum:"en_attente,contrat_envoye,valide,fin"`
	LogementID     int64  `query:"logement_id" required:"false"`
	IncludeDeleted bool   `query:"include_deleted" required:"false" doc:"Include contracts in the trash"`
	Limit          int    `query:"limit" required:"false" default:"50"`
	Offset         int    `query:"offset" required:"false" default:"0"`
}

type ListContractsOutput struct {
	Body []ContractResponse
}

type contractAction struct {
	id      string
	path    string
	summary string
	run     func(ctx context.Context, id int64) (domain.Contract, error)
}

func registerContracts(api huma.API, svc *app.ContractService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-contract",
		Method:      http.MethodPost,
		Path:        "/api/v1/contracts",
		Summary:     "Draw up a lease for an accepted candidature",
		Tags:        []string{"Contracts"},
	}, func(ctx context.Context, input *CreateContractInput) (*ContractOutput, error) {
		start, err := parseDate("date_debut", input.Body.StartDate)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		var end *time.Time
		if input.Body.ExpectedEndDate != "" {
			d, err := parseDate("date_fin_prevue", input.Body.ExpectedEndDate)
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			end = &d
		}

		c, err := svc.Create(ctx, input.Body.CandidatureID, start, end)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ContractOutput{Body: toContractResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-contract",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts/{id}",
		Summary:     "Get a contract",
		Tags:        []string{"Contracts"},
	}, func(ctx context.Context, input *IDInput) (*ContractOutput, error) {
		c, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &ContractOutput{Body: toContractResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-contracts",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts",
		Summary:     "List contracts",
		Tags:        []string{"Contracts"},
	}, func(ctx context.Context, input *ListContractsInput) (*ListContractsOutput, error) {
		filter := domain.ContractFilter{
			LogementID:     input.LogementID,
			IncludeDeleted: input.IncludeDeleted,
			Limit:          input.Limit,
			Offset:         input.Offset,
		}
		if input.Status != "" {
			s := domain.ContractStatus(input.Status)
			filter.Status = &s
		}

		contracts, err := svc.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}

		resp := make([]ContractResponse, len(contracts))
		for i, c := range contracts {
			resp[i] = toContractResponse(c)
		}
		return &ListContractsOutput{Body: resp}, nil
	})

	actions := []contractAction{
		{"validate-contract", "validate", "Mark the lease as signed", svc.Validate},
		{"close-contract", "close", "End the lease and free the logement", svc.Close},
		{"delete-contract", "delete", "Move the contract and its records to the trash", svc.SoftDelete},
		{"restore-contract", "restore", "Restore from the trash, or reopen a closed lease", svc.Restore},
		{"restore-contract-trash", "restore-trash", "Restore the contract and its records from the trash", svc.RestoreFromTrash},
		{"restore-contract-closure", "restore-closure", "Reopen a closed lease", svc.RestoreFromClosure},
		{"resend-contract-signature", "resend-signature", "Send the signature link again", svc.ResendSignatureLink},
	}
	for _, a := range actions {
		huma.Register(api, huma.Operation{
			OperationID: a.id,
			Method:      http.MethodPost,
			Path:        "/api/v1/contracts/{id}/" + a.path,
			Summary:     a.summary,
			Tags:        []string{"Contracts"},
		}, func(ctx context.Context, input *IDInput) (*ContractOutput, error) {
			c, err := a.run(ctx, input.ID)
			if err != nil {
				return nil, toHumaError(ctx, err)
			}
			return &ContractOutput{Body: toContractResponse(c)}, nil
		})
	}
}
