package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/colisdirect/colisdirect-backend/api/middleware"
	"github.com/colisdirect/colisdirect-backend/internal/delivery"
	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	pkgerrors "github.com/colisdirect/colisdirect-backend/pkg/errors"
)

// userDirectory resolves display names for event payloads.
type userDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// actorFromRequest builds the acting identity from the authenticated context.
func actorFromRequest(r *http.Request) (delivery.Actor, error) {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return delivery.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	orgID, err := uuid.Parse(middleware.OrganizationIDFromContext(r.Context()))
	if err != nil {
		return delivery.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "organization context missing")
	}
	role := enums.MemberRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return delivery.Actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}
	return delivery.Actor{
		UserID:         userID,
		OrganizationID: orgID,
		Role:           role,
	}, nil
}

// resolveActor hydrates the actor's display name when a directory is wired.
// Name lookup is best effort; events tolerate an empty agent name.
func resolveActor(r *http.Request, dir userDirectory) (delivery.Actor, error) {
	actor, err := actorFromRequest(r)
	if err != nil {
		return actor, err
	}
	if dir != nil {
		if user, lookupErr := dir.FindByID(r.Context(), actor.UserID); lookupErr == nil && user != nil {
			actor.Name = user.Name
		}
	}
	return actor, nil
}
