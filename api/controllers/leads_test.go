package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/leadfunnel-backend/internal/leads"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
	"github.com/angelmondragon/leadfunnel-backend/pkg/pagination"
	"github.com/angelmondragon/leadfunnel-backend/pkg/types"
)

type stubLeadService struct {
	err error

	created    leads.CreateLeadInput
	transition leads.TransitionInput
	filter     leads.ListFilter
	params     pagination.Params
	listActor  types.Actor
	dashCode   string
	reasonText string
}

func (s *stubLeadService) CreateLead(_ context.Context, input leads.CreateLeadInput) (*leads.LeadDTO, error) {
	s.created = input
	if s.err != nil {
		return nil, s.err
	}
	return &leads.LeadDTO{ID: "lead-1", FullName: input.FullName, Status: enums.LeadStatusPendente}, nil
}

func (s *stubLeadService) GetLead(_ context.Context, _ types.Actor, id string) (*leads.LeadDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &leads.LeadDTO{ID: id, Status: enums.LeadStatusPendente}, nil
}

func (s *stubLeadService) ListLeads(_ context.Context, actor types.Actor, filter leads.ListFilter, params pagination.Params) (*leads.LeadList, error) {
	s.listActor = actor
	s.filter = filter
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return &leads.LeadList{Leads: []leads.LeadDTO{}}, nil
}

func (s *stubLeadService) Transition(_ context.Context, input leads.TransitionInput) (*leads.LeadDTO, error) {
	s.transition = input
	if s.err != nil {
		return nil, s.err
	}
	return &leads.LeadDTO{ID: input.LeadID, Status: input.Target}, nil
}

func (s *stubLeadService) CancellationReason(_ context.Context, leadID string) (*leads.CancellationReasonDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &leads.CancellationReasonDTO{LeadID: leadID, Motivo: "sem cobertura"}, nil
}

func (s *stubLeadService) SaveCancellationReason(_ context.Context, leadID, reason string) (*leads.CancellationReasonDTO, error) {
	s.reasonText = reason
	if s.err != nil {
		return nil, s.err
	}
	return &leads.CancellationReasonDTO{LeadID: leadID, Motivo: reason}, nil
}

func (s *stubLeadService) DashboardStats(_ context.Context, promoCode string) (*leads.DashboardStats, error) {
	s.dashCode = promoCode
	if s.err != nil {
		return nil, s.err
	}
	return &leads.DashboardStats{PromoCode: promoCode}, nil
}

func TestCaptureLeadCreated(t *testing.T) {
	svc := &stubLeadService{}
	body := `{"full_name":"Maria Souza","cpf":"123.456.789-09","telefone":"(11) 98888-7777","promo_code":"ABC123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/public/leads", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	CaptureLead(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if svc.created.PromoCode != "ABC123" || svc.created.CPF != "123.456.789-09" {
		t.Fatalf("unexpected input %+v", svc.created)
	}
}

func TestCaptureLeadRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/public/leads", bytes.NewBufferString(`{"full_name":"x","telefone":"1","status":"Pago"}`))
	rec := httptest.NewRecorder()

	CaptureLead(&stubLeadService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCaptureLeadRequiresName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/public/leads", bytes.NewBufferString(`{"telefone":"11988887777"}`))
	rec := httptest.NewRecorder()

	CaptureLead(&stubLeadService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestListLeadsParsesStatusSlug(t *testing.T) {
	svc := &stubLeadService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads?status=aguardando-pagamento&limit=10&cursor=abc", nil)
	req = withActor(req, testActor(enums.UserRoleFinanceiro))
	rec := httptest.NewRecorder()

	ListLeads(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.filter.Status == nil || *svc.filter.Status != enums.LeadStatusAguardandoPagamento {
		t.Fatalf("expected status filter, got %+v", svc.filter)
	}
	if svc.params.Limit != 10 || svc.params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", svc.params)
	}
	if svc.listActor.Role != enums.UserRoleFinanceiro {
		t.Fatalf("actor not forwarded")
	}
}

func TestListLeadsRejectsUnknownSlug(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads?status=arquivados", nil)
	req = withActor(req, testActor(enums.UserRoleAdmin))
	rec := httptest.NewRecorder()

	ListLeads(&stubLeadService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestListLeadsRequiresActor(t *testing.T) {
	rec := httptest.NewRecorder()

	ListLeads(&stubLeadService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestUpdateLeadStatusForwardsTransition(t *testing.T) {
	svc := &stubLeadService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/lead-9/status", bytes.NewBufferString(`{"status":"Cancelado","motivo":"  cliente desistiu  "}`))
	req = withURLParams(withActor(req, testActor(enums.UserRoleVendedorInterno)), map[string]string{"leadId": "lead-9"})
	rec := httptest.NewRecorder()

	UpdateLeadStatus(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.transition.LeadID != "lead-9" || svc.transition.Target != enums.LeadStatusCancelado {
		t.Fatalf("unexpected transition %+v", svc.transition)
	}
	if svc.transition.Reason != "cliente desistiu" {
		t.Fatalf("expected trimmed reason, got %q", svc.transition.Reason)
	}
	if svc.transition.Actor.ID != "user-1" {
		t.Fatalf("actor not forwarded")
	}
}

func TestUpdateLeadStatusRejectsUnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/lead-9/status", bytes.NewBufferString(`{"status":"Arquivado"}`))
	req = withURLParams(withActor(req, testActor(enums.UserRoleAdmin)), map[string]string{"leadId": "lead-9"})
	rec := httptest.NewRecorder()

	UpdateLeadStatus(&stubLeadService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUpdateLeadStatusMapsStateConflict(t *testing.T) {
	svc := &stubLeadService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/lead-9/status", bytes.NewBufferString(`{"status":"Finalizado"}`))
	req = withURLParams(withActor(req, testActor(enums.UserRoleAdmin)), map[string]string{"leadId": "lead-9"})
	rec := httptest.NewRecorder()

	UpdateLeadStatus(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "STATE_CONFLICT" {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestPutCancellationReason(t *testing.T) {
	svc := &stubLeadService{}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/leads/lead-2/cancellation-reason", bytes.NewBufferString(`{"motivo":"duplicado"}`))
	req = withURLParams(req, map[string]string{"leadId": "lead-2"})
	rec := httptest.NewRecorder()

	PutCancellationReason(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data leads.CancellationReasonDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.LeadID != "lead-2" || envelope.Data.Motivo != "duplicado" {
		t.Fatalf("unexpected body %+v", envelope.Data)
	}
}

func TestSellerDashboardScopesExternalSeller(t *testing.T) {
	svc := &stubLeadService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/dashboard?promo_code=OTHER", nil)
	req = withActor(req, testActor(enums.UserRoleVendedorExterno))
	rec := httptest.NewRecorder()

	SellerDashboard(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.dashCode != "ABC123" {
		t.Fatalf("external seller must see own code, got %q", svc.dashCode)
	}
}

func TestSellerDashboardStaffOverride(t *testing.T) {
	svc := &stubLeadService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/dashboard?promo_code=OTHER", nil)
	req = withActor(req, testActor(enums.UserRoleAdmin))
	rec := httptest.NewRecorder()

	SellerDashboard(svc, nil).ServeHTTP(rec, req)

	if svc.dashCode != "OTHER" {
		t.Fatalf("expected override, got %q", svc.dashCode)
	}
}
