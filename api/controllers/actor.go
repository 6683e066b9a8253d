package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/leadfunnel-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
	"github.com/angelmondragon/leadfunnel-backend/pkg/types"
)

func requireActor(r *http.Request) (types.Actor, error) {
	actor := middleware.ActorFromContext(r.Context())
	if !actor.Present() {
		return types.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return actor, nil
}

func pathParam(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	return value, nil
}
