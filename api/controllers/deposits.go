package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colisdirect/colisdirect-backend/api/responses"
	"github.com/colisdirect/colisdirect-backend/api/validators"
	"github.com/colisdirect/colisdirect-backend/internal/deposits"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	pkgerrors "github.com/colisdirect/colisdirect-backend/pkg/errors"
	"github.com/colisdirect/colisdirect-backend/pkg/logger"
	"github.com/colisdirect/colisdirect-backend/pkg/pagination"
)

const maxDepositNotesLength = 512

type createDepositRequest struct {
	// DeliveryManId is only honored for admins recording cash on arrival.
	DeliveryManID *uuid.UUID      `json:"deliveryManId,omitempty"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Notes         *string         `json:"notes,omitempty"`
}

type resolveDepositRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateDeposit declares a pending deposit for the agent, or records an
// already-confirmed handover when an admin supplies deliveryManId.
func CreateDeposit(svc deposits.Service, users userDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deposits service unavailable"))
			return
		}

		actor, err := resolveActor(r, users)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createDepositRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var notes *string
		if req.Notes != nil {
			trimmed := validators.SanitizeString(*req.Notes, maxDepositNotesLength)
			if trimmed != "" {
				notes = &trimmed
			}
		}

		if req.DeliveryManID != nil {
			deposit, err := svc.RecordManual(r.Context(), deposits.ManualInput{
				Actor:         actor,
				DeliveryManID: *req.DeliveryManID,
				Amount:        req.Amount,
				Notes:         notes,
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccessStatus(w, http.StatusCreated, deposit)
			return
		}

		deposit, err := svc.Declare(r.Context(), deposits.DeclareInput{
			Actor:  actor,
			Amount: req.Amount,
			Notes:  notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, deposit)
	}
}

// ResolveDeposit confirms or rejects a pending deposit.
func ResolveDeposit(svc deposits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deposits service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		depositID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deposit id"))
			return
		}

		var req resolveDepositRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := enums.ParseDepositStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deposit status"))
			return
		}

		deposit, err := svc.Resolve(r.Context(), deposits.ResolveInput{
			DepositID: depositID,
			Actor:     actor,
			Decision:  decision,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deposit)
	}
}

// MyDepositStatus returns the authenticated agent's balance snapshot.
func MyDepositStatus(svc deposits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deposits service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Balance(r.Context(), actor, actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// DepositStatusByUser returns another agent's balance snapshot (admin only,
// enforced by route middleware).
func DepositStatusByUser(svc deposits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deposits service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		snapshot, err := svc.Balance(r.Context(), actor, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// ListDeposits returns the paginated, filterable deposit ledger.
func ListDeposits(svc deposits.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "deposits service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := depositFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), actor, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func depositFilters(r *http.Request) (deposits.ListFilters, error) {
	var filters deposits.ListFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseDepositStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("deliveryManId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deliveryManId filter")
		}
		filters.DeliveryManID = &id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from filter")
		}
		filters.DateFrom = &from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to filter")
		}
		filters.DateTo = &to
	}

	return filters, nil
}
