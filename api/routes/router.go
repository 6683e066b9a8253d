package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/leadfunnel-backend/api/controllers"
	"github.com/angelmondragon/leadfunnel-backend/api/middleware"
	"github.com/angelmondragon/leadfunnel-backend/internal/bonus"
	"github.com/angelmondragon/leadfunnel-backend/internal/leads"
	"github.com/angelmondragon/leadfunnel-backend/internal/paymentgroups"
	"github.com/angelmondragon/leadfunnel-backend/internal/proofs"
	"github.com/angelmondragon/leadfunnel-backend/pkg/config"
	"github.com/angelmondragon/leadfunnel-backend/pkg/db"
	"github.com/angelmondragon/leadfunnel-backend/pkg/enums"
	"github.com/angelmondragon/leadfunnel-backend/pkg/logger"
	"github.com/angelmondragon/leadfunnel-backend/pkg/redis"
)

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Leads         leads.Service
	Proofs        proofs.Service
	PaymentGroups paymentgroups.Service
	Bonus         bonus.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	// A nil *redis.Client must reach the middleware as a nil interface.
	var (
		cachePinger controllers.Pinger
		idemStore   redis.IdempotencyStore
		limiter     middleware.RateLimiterStore
	)
	if redisClient != nil {
		cachePinger = redisClient
		idemStore = redisClient
		limiter = redisClient
	}

	capturePolicy := middleware.NewRateLimitPolicy("lead_capture", cfg.RateLimit.CaptureWindow, cfg.RateLimit.CaptureIPLimit)
	idempotent := middleware.Idempotency(idemStore, cfg.Idempotency.TTL, logg)
	maxProofBytes := cfg.Proofs.MaxBytes()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cachePinger, logg))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
		r.Use(middleware.RateLimit(capturePolicy, limiter, logg))
		r.Use(middleware.RequireAPIKey(cfg.App.LeadAPIKey, logg))
		r.Post("/leads", controllers.CaptureLead(svcs.Leads, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", controllers.ListLeads(svcs.Leads, logg))
			r.Get("/{leadId}", controllers.GetLead(svcs.Leads, logg))
			r.With(idempotent).Post("/{leadId}/status", controllers.UpdateLeadStatus(svcs.Leads, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Get("/{leadId}/cancellation-reason", controllers.GetCancellationReason(svcs.Leads, logg))
				r.Put("/{leadId}/cancellation-reason", controllers.PutCancellationReason(svcs.Leads, logg))
				r.Get("/{leadId}/proof", controllers.GetLeadProof(svcs.Proofs, logg))
				r.Put("/{leadId}/proof", controllers.UploadLeadProof(svcs.Proofs, maxProofBytes, logg))
				r.Delete("/{leadId}/proof", controllers.DeleteLeadProof(svcs.Proofs, logg))
			})
		})

		r.Route("/finance/groups", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleFinanceiro, enums.UserRoleAdmin))
			r.Get("/", controllers.PendingGroups(svcs.PaymentGroups, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleFinanceiro), idempotent).Post("/{promoCode}", controllers.ProcessGroup(svcs.PaymentGroups, maxProofBytes, logg))
			r.Get("/{promoCode}/proof", controllers.GroupProof(svcs.PaymentGroups, logg))
			r.Get("/{promoCode}/history", controllers.GroupHistory(svcs.PaymentGroups, logg))
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/bonus", controllers.BonusBalance(svcs.Bonus, logg))
			r.Get("/bonus/history", controllers.BonusHistory(svcs.Bonus, logg))
			r.With(idempotent).Post("/bonus/redeem", controllers.RedeemBonus(svcs.Bonus, logg))
			r.Get("/dashboard", controllers.SellerDashboard(svcs.Leads, logg))
		})
	})

	return r
}
