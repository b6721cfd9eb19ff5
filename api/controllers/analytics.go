package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/colisdirect/colisdirect-backend/api/responses"
	"github.com/colisdirect/colisdirect-backend/internal/analytics"
	pkgerrors "github.com/colisdirect/colisdirect-backend/pkg/errors"
	"github.com/colisdirect/colisdirect-backend/pkg/logger"
)

// DeliveryAnalytics serves agent performance stats. Agents get their own
// numbers; admins may pass agentId for one agent or omit it for the fleet.
func DeliveryAnalytics(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		period, err := analyticsPeriod(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawAgentID := strings.TrimSpace(r.URL.Query().Get("agentId"))
		if rawAgentID == "" && actor.Role.CanAdministrate() {
			stats, err := svc.FleetStats(r.Context(), actor, period)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, stats)
			return
		}

		agentID := actor.UserID
		if rawAgentID != "" {
			parsed, err := uuid.Parse(rawAgentID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid agentId"))
				return
			}
			agentID = parsed
		}

		stats, err := svc.AgentStats(r.Context(), actor, agentID, period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func analyticsPeriod(r *http.Request) (analytics.Period, error) {
	var period analytics.Period

	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return period, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from filter")
		}
		period.From = &from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return period, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to filter")
		}
		period.To = &to
	}

	return period, nil
}
