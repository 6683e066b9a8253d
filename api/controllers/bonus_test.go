package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/internal/bonus"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
)

type stubBonusService struct {
	err    error
	redeem bonus.RedeemInput
}

func (s *stubBonusService) Increment(context.Context, *gorm.DB, string) error { return nil }
func (s *stubBonusService) Decrement(context.Context, *gorm.DB, string) error { return nil }

func (s *stubBonusService) Redeem(_ context.Context, input bonus.RedeemInput) (*bonus.RedeemResult, error) {
	s.redeem = input
	if s.err != nil {
		return nil, s.err
	}
	return &bonus.RedeemResult{Amount: input.Amount}, nil
}

func (s *stubBonusService) Balance(context.Context, string) (*bonus.BalanceDTO, error) {
	return &bonus.BalanceDTO{}, s.err
}

func (s *stubBonusService) History(context.Context, string) ([]bonus.RedemptionDTO, error) {
	return []bonus.RedemptionDTO{}, s.err
}

func TestRedeemBonusUsesActorID(t *testing.T) {
	svc := &stubBonusService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/bonus/redeem", bytes.NewBufferString(`{"amount":45,"referral_count":12}`))
	req = withActor(req, testActor(enums.UserRoleVendedorExterno))
	rec := httptest.NewRecorder()

	RedeemBonus(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.redeem.UserID != "user-1" || svc.redeem.Amount != 45 || svc.redeem.ReferralCountAtRequestTime != 12 {
		t.Fatalf("unexpected input %+v", svc.redeem)
	}
}

func TestRedeemBonusStaleBalance(t *testing.T) {
	svc := &stubBonusService{err: pkgerrors.New(pkgerrors.CodeConflict, "balance changed, refresh and retry")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/bonus/redeem", bytes.NewBufferString(`{"amount":45,"referral_count":12}`))
	req = withActor(req, testActor(enums.UserRoleVendedorExterno))
	rec := httptest.NewRecorder()

	RedeemBonus(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestRedeemBonusRequiresAmount(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/bonus/redeem", bytes.NewBufferString(`{"referral_count":12}`))
	req = withActor(req, testActor(enums.UserRoleVendedorExterno))
	rec := httptest.NewRecorder()

	RedeemBonus(&stubBonusService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
