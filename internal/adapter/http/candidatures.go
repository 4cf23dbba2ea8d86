package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/gestloc/internal/app"
	"github.com/neomorfeo/gestloc/internal/domain"
)

// CandidatureResponse is the API representation of a rental application.
type CandidatureResponse struct {
	ID         int64   `json:"id"`
	Reference  string  `json:"reference"`
	Name       string  `json:"nom"`
	Email      string  `json:"email"`
	LogementID int64   `json:"logement_id"`
	Status     string  `json:"statut"`
	DeletedAt  *string `json:"deleted_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func toCandidatureResponse(c domain.Candidature) CandidatureResponse {
	return CandidatureResponse{
		ID:         c.ID,
		Reference:  c.Reference,
		Name:       c.Name,
		Email:      c.Email,
		LogementID: c.LogementID,
		Status:     string(c.Status),
		DeletedAt:  formatNullTime(c.DeletedAt),
		CreatedAt:  c.CreatedAt.Format(timestampLayout),
		UpdatedAt:  c.UpdatedAt.Format(timestampLayout),
	}
}

// NoteResponse is an admin note on a candidature.
type NoteResponse struct {
	ID            int64  `json:"id"`
	CandidatureID int64  `json:"candidature_id"`
	Body          string `json:"contenu"`
	CreatedAt     string `json:"created_at"`
}

func toNoteResponse(n domain.Note) NoteResponse {
	return NoteResponse{
		ID:            n.ID,
		CandidatureID: n.CandidatureID,
		Body:          n.Body,
		CreatedAt:     n.CreatedAt.Format(timestampLayout),
	}
}

type CreateCandidatureInput struct {
	Body struct {
		Name       string `json:"nom" minLength:"1" maxLength:"255"`
		Email      string `json:"email" minLength:"3" maxLength:"255"`
		LogementID int64  `json:"logement_id"`
	}
}

type CandidatureOutput struct {
	Body CandidatureResponse
}

type ListCandidaturesInput struct {
	Status         string `query:"statut" required:"false" doc:"Filter by status"`
	IncludeDeleted bool   `query:"include_deleted" required:"false" doc:"Include soft-deleted candidatures"`
	Limit          int    `query:"limit" required:"false" default:"50"`
	Offset         int    `query:"offset" required:"false" default:"0"`
}

type ListCandidaturesOutput struct {
	Body []CandidatureResponse
}

type ChangeStatusInput struct {
	ID   int64 `path:"id"`
	Body struct {
		Status  string `json:"statut" enum:"en_attente,accepte,refuse,visite_planifiee,contrat_envoye,contrat_signe" doc:"Target status"`
		Comment string `json:"commentaire,omitempty" maxLength:"2000"`
	}
}

type AddNoteInput struct {
	ID   int64 `path:"id"`
	Body struct {
		Content string `json:"contenu" doc:"Up to 5000 characters"`
	}
}

type NoteOutput struct {
	Body NoteResponse
}

type ListNotesOutput struct {
	Body []NoteResponse
}

func registerCandidatures(api huma.API, svc *app.CandidatureService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-candidature",
		Method:      http.MethodPost,
		Path:        "/api/v1/candidatures",
		Summary:     "Record a rental application",
		Tags:        []string{"Candidatures"},
	}, func(ctx context.Context, input *CreateCandidatureInput) (*CandidatureOutput, error) {
		c, err := svc.Create(ctx, input.Body.Name, input.Body.Email, input.Body.LogementID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &CandidatureOutput{Body: toCandidatureResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-candidature",
		Method:      http.MethodGet,
		Path:        "/api/v1/candidatures/{id}",
		Summary:     "Get a candidature",
		Tags:        []string{"Candidatures"},
	}, func(ctx context.Context, input *IDInput) (*CandidatureOutput, error) {
		c, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &CandidatureOutput{Body: toCandidatureResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-candidatures",
		Method:      http.MethodGet,
		Path:        "/api/v1/candidatures",
		Summary:     "List candidatures",
		Tags:        []string{"Candidatures"},
	}, func(ctx context.Context, input *ListCandidaturesInput) (*ListCandidaturesOutput, error) {
		filter := domain.CandidatureFilter{
			IncludeDeleted: input.IncludeDeleted,
			Limit:          input.Limit,
			Offset:         input.Offset,
		}
		if input.Status != "" {
			s := domain.CandidatureStatus(input.Status)
			filter.Status = &s
		}

		candidatures, err := svc.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}

		resp := make([]CandidatureResponse, len(candidatures))
		for i, c := range candidatures {
			resp[i] = toCandidatureResponse(c)
		}
		return &ListCandidaturesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-candidature-status",
		Method:      http.MethodPost,
		Path:        "/api/v1/candidatures/{id}/statut",
		Summary:     "Move a candidature to another status",
		Tags:        []string{"Candidatures"},
	}, func(ctx context.Context, input *ChangeStatusInput) (*CandidatureOutput, error) {
		c, err := svc.ChangeStatus(ctx, input.ID, domain.CandidatureStatus(input.Body.Status), input.Body.Comment)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &CandidatureOutput{Body: toCandidatureResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-candidature",
		Method:      http.MethodPost,
		Path:        "/api/v1/candidatures/{id}/delete",
		Summary:     "Move a candidature to the trash",
		Tags:        []string{"Candidatures"},
	}, func(ctx context.Context, input *IDInput) (*struct{}, error) {
		if err := svc.SoftDelete(ctx, input.ID); err != nil {
			return nil, toHumaError(ctx, err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-candidature-note",
		Method:      http.MethodPost,
		Path:        "/api/v1/candidatures/{id}/notes",
		Summary:     "Attach an admin note",
		Tags:        []string{"Candidatures"},
	}, func(ctx context.Context, input *AddNoteInput) (*NoteOutput, error) {
		n, err := svc.AddNote(ctx, input.ID, input.Body.Content)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &NoteOutput{Body: toNoteResponse(n)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-candidature-notes",
		Method:      http.MethodGet,
		Path:        "/api/v1/candidatures/{id}/notes",
		Summary:     "List the admin notes of a candidature",
		Tags:        []string{"Candidatures"},
	}, func(ctx context.Context, input *IDInput) (*ListNotesOutput, error) {
		notes, err := svc.Notes(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}

		resp := make([]NoteResponse, len(notes))
		for i, n := range notes {
			resp[i] = toNoteResponse(n)
		}
		return &ListNotesOutput{Body: resp}, nil
	})
}
