package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/leadfunnel-backend/internal/proofs"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
)

type stubProofService struct {
	err      error
	attached proofs.File
}

func (s *stubProofService) Attach(_ context.Context, leadID string, file proofs.File) (*proofs.Proof, error) {
	s.attached = file
	if s.err != nil {
		return nil, s.err
	}
	return &proofs.Proof{LeadID: leadID, ContentType: file.ContentType, Size: len(file.Data)}, nil
}

func (s *stubProofService) Get(_ context.Context, leadID string) (*proofs.Proof, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &proofs.Proof{LeadID: leadID, ContentType: "image/png", DataURI: proofs.EncodeDataURI("image/png", pngBytes), Data: pngBytes}, nil
}

func (s *stubProofService) Delete(context.Context, string) error { return s.err }

func TestUploadLeadProof(t *testing.T) {
	svc := &stubProofService{}
	req := multipartRequest(t, "/api/v1/leads/lead-1/proof", nil, pngBytes)
	req = withURLParams(req, map[string]string{"leadId": "lead-1"})
	rec := httptest.NewRecorder()

	UploadLeadProof(svc, proofs.DefaultMaxBytes, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.attached.Name != "pix.png" || len(svc.attached.Data) != len(pngBytes) {
		t.Fatalf("unexpected file %+v", svc.attached)
	}
}

func TestUploadLeadProofRequiresFile(t *testing.T) {
	req := multipartRequest(t, "/api/v1/leads/lead-1/proof", map[string]string{"note": "x"}, nil)
	req = withURLParams(req, map[string]string{"leadId": "lead-1"})
	rec := httptest.NewRecorder()

	UploadLeadProof(&stubProofService{}, proofs.DefaultMaxBytes, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUploadLeadProofTooLarge(t *testing.T) {
	req := multipartRequest(t, "/api/v1/leads/lead-1/proof", nil, make([]byte, 64))
	req = withURLParams(req, map[string]string{"leadId": "lead-1"})
	rec := httptest.NewRecorder()

	UploadLeadProof(&stubProofService{}, 32, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestGetLeadProofEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads/lead-1/proof", nil)
	req = withURLParams(req, map[string]string{"leadId": "lead-1"})
	rec := httptest.NewRecorder()

	GetLeadProof(&stubProofService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := envelope.Data["data_uri"]; !ok {
		t.Fatalf("expected data_uri in %v", envelope.Data)
	}
	if _, ok := envelope.Data["Data"]; ok {
		t.Fatalf("raw bytes must not be serialised")
	}
}

func TestDeleteLeadProofNotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/leads/lead-1/proof", nil)
	req = withURLParams(req, map[string]string{"leadId": "lead-1"})
	rec := httptest.NewRecorder()

	DeleteLeadProof(&stubProofService{err: pkgerrors.New(pkgerrors.CodeNotFound, "proof not found")}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
