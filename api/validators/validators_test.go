package validators

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
)

type redeemPayload struct {
	Amount int    `json:"amount" validate:"required,gt=0"`
	Note   string `json:"note,omitempty" validate:"max=5"`
}

func TestDecodeJSONBodyValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"amount":0,"note":"too long"}`))
	var dest redeemPayload

	err := DecodeJSONBody(req, &dest)

	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", pkgerrors.As(err).Details())
	}
	if details["amount"] != "is required" || details["note"] != "must be at most 5" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsTrailingObject(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"amount":1}{"amount":2}`))
	var dest redeemPayload

	if err := DecodeJSONBody(req, &dest); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var dest redeemPayload

	err := DecodeJSONBody(req, &dest)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) || pkgerrors.As(err).Message() != "request body required" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestParseQueryBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?download=true&bad=maybe", nil)

	if v, err := ParseQueryBool(req, "download"); err != nil || !v {
		t.Fatalf("expected true, got %v %v", v, err)
	}
	if v, err := ParseQueryBool(req, "missing"); err != nil || v {
		t.Fatalf("expected false, got %v %v", v, err)
	}
	if _, err := ParseQueryBool(req, "bad"); err == nil {
		t.Fatalf("expected error for non boolean")
	}
}

func TestSanitizeStringCountsRunes(t *testing.T) {
	if got := SanitizeString("  ação rápida  ", 4); got != "ação" {
		t.Fatalf("unexpected %q", got)
	}
}
