package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/leadfunnel-backend/api/middleware"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	"github.com/angelmondragon/leadfunnel-backend/pkg/types"
)

func strPtr(v string) *string { return &v }

func testActor(role enums.UserRole) types.Actor {
	return types.Actor{ID: "user-1", Name: "Ana", Role: role, PromoCode: strPtr("ABC123")}
}

func withActor(req *http.Request, actor types.Actor) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}
