package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/gestloc/internal/app"
	"github.com/neomorfeo/gestloc/internal/domain"
)

var notFound = []error{
	domain.ErrLogementNotFound,
	domain.ErrCandidatureNotFound,
	domain.ErrContractNotFound,
	domain.ErrInspectionNotFound,
	domain.ErrPhotoNotFound,
	domain.ErrFileNotFound,
}

// toHumaError translates domain errors to Huma HTTP errors. Unknown errors are
// logged and reported with a generic message.
func toHumaError(ctx context.Context, err error) error {
	for _, sentinel := range notFound {
		if errors.Is(err, sentinel) {
			return huma.Error404NotFound(sentinel.Error())
		}
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return huma.Error422UnprocessableEntity(valErr.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return huma.Error409Conflict(conflict.Error())
	}

	if errors.Is(err, domain.ErrUnsafePath) {
		return huma.Error400BadRequest("invalid path")
	}

	if errors.Is(err, app.ErrRenderTimeout) {
		return huma.Error504GatewayTimeout(err.Error())
	}

	slog.ErrorContext(ctx, "request failed", "error", err)
	return huma.Error500InternalServerError("internal server error")
}

// writeError writes err as a problem+json response from a plain chi handler.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	herr := toHumaError(r.Context(), err)

	status := http.StatusInternalServerError
	var se huma.StatusError
	if errors.As(herr, &se) {
		status = se.GetStatus()
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(herr)
}
