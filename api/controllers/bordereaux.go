package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/colisdirect/colisdirect-backend/api/responses"
	"github.com/colisdirect/colisdirect-backend/api/validators"
	"github.com/colisdirect/colisdirect-backend/internal/bordereaux"
	pkgerrors "github.com/colisdirect/colisdirect-backend/pkg/errors"
	"github.com/colisdirect/colisdirect-backend/pkg/logger"
)

type assignBordereauRequest struct {
	Code string `json:"code" validate:"required"`
}

// AssignBordereau claims a whole manifest for the authenticated agent.
func AssignBordereau(svc bordereaux.Service, users userDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bordereaux service unavailable"))
			return
		}

		actor, err := resolveActor(r, users)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignBordereauRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.Claim(r.Context(), bordereaux.ClaimInput{
			Code:  validators.SanitizeString(req.Code, 64),
			Actor: actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// BordereauPreview returns the manifest summary for a code without claiming it.
func BordereauPreview(svc bordereaux.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bordereaux service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "bordereau code required"))
			return
		}

		preview, err := svc.Preview(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}
