package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/colisdirect/colisdirect-backend/api/responses"
	"github.com/colisdirect/colisdirect-backend/api/validators"
	"github.com/colisdirect/colisdirect-backend/internal/delivery"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	pkgerrors "github.com/colisdirect/colisdirect-backend/pkg/errors"
	"github.com/colisdirect/colisdirect-backend/pkg/logger"
	"github.com/colisdirect/colisdirect-backend/pkg/pagination"
)

const maxNoteLength = 1024

type assignOrderRequest struct {
	OrderIdentifier string `json:"orderIdentifier" validate:"required"`
}

type orderStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note,omitempty"`
}

// ScanEntity resolves a scanned code to an order or bordereau preview.
func ScanEntity(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "scan code required"))
			return
		}

		result, err := svc.Scan(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AssignOrder claims a single order for the authenticated agent.
func AssignOrder(svc delivery.Service, users userDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		actor, err := resolveActor(r, users)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Claim(r.Context(), delivery.ClaimInput{
			OrderIdentifier: validators.SanitizeString(req.OrderIdentifier, 64),
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery.NewOrderSummary(*order))
	}
}

// DeliverOrder marks a held order as delivered.
func DeliverOrder(svc delivery.Service, users userDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		actor, err := resolveActor(r, users)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.Deliver(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery.NewOrderSummary(*order))
	}
}

// UpdateOrderStatus applies a guarded status transition. French status labels
// are accepted on the wire.
func UpdateOrderStatus(svc delivery.Service, users userDirectory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		actor, err := resolveActor(r, users)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var req orderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		var note *string
		if req.Note != nil {
			trimmed := validators.SanitizeString(*req.Note, maxNoteLength)
			if trimmed != "" {
				note = &trimmed
			}
		}

		order, err := svc.ApplyTransition(r.Context(), delivery.TransitionInput{
			OrderID: orderID,
			Target:  target,
			Note:    note,
			Actor:   actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery.NewOrderSummary(*order))
	}
}

// MyDeliveries lists the agent's active assigned orders.
func MyDeliveries(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return listAgentOrders(svc, logg, func(r *http.Request, agentID uuid.UUID, params pagination.Params) (*delivery.OrderList, error) {
		return svc.MyDeliveries(r.Context(), agentID, params)
	})
}

// MyHistory lists the agent's resolved orders.
func MyHistory(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return listAgentOrders(svc, logg, func(r *http.Request, agentID uuid.UUID, params pagination.Params) (*delivery.OrderList, error) {
		return svc.MyHistory(r.Context(), agentID, params)
	})
}

func listAgentOrders(
	svc delivery.Service,
	logg *logger.Logger,
	fetch func(*http.Request, uuid.UUID, pagination.Params) (*delivery.OrderList, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
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

		list, err := fetch(r, actor.UserID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
