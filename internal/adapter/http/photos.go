package http

import (
	"context"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/gestloc/internal/app"
	"github.com/neomorfeo/gestloc/internal/domain"
)

// PhotoResponse describes a stored inspection photo.
type PhotoResponse struct {
	ID           int64  `json:"id"`
	InspectionID int64  `json:"etat_des_lieux_id"`
	Category     string `json:"categorie"`
	Path         string `json:"chemin"`
	URL          string `json:"url" doc:"Download link"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"taille"`
	CreatedAt    string `json:"created_at"`
}

func toPhotoResponse(p domain.Photo) PhotoResponse {
	return PhotoResponse{
		ID:           p.ID,
		InspectionID: p.InspectionID,
		Category:     string(p.Category),
		Path:         p.Path,
		URL:          "/api/v1/files?path=" + url.QueryEscape(p.Path),
		MimeType:     p.MimeType,
		Size:         p.Size,
		CreatedAt:    p.CreatedAt.Format(timestampLayout),
	}
}

type ListPhotosOutput struct {
	Body []PhotoResponse
}

func registerPhotos(api huma.API, svc *app.PhotoService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-photos",
		Method:      http.MethodGet,
		Path:        "/api/v1/inspections/{id}/photos",
		Summary:     "List the photos of an état des lieux",
		Tags:        []string{"Photos"},
	}, func(ctx context.Context, input *IDInput) (*ListPhotosOutput, error) {
		photos, err := svc.List(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		resp := make([]PhotoResponse, len(photos))
		for i, p := range photos {
			resp[i] = toPhotoResponse(p)
		}
		return &ListPhotosOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-photo",
		Method:      http.MethodPost,
		Path:        "/api/v1/photos/{id}/delete",
		Summary:     "Delete a photo and its file",
		Tags:        []string{"Photos"},
	}, func(ctx context.Context, input *IDInput) (*struct{}, error) {
		if err := svc.Delete(ctx, input.ID); err != nil {
			return nil, toHumaError(ctx, err)
		}
		return nil, nil
	})
}
