package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pg-onboarding-api/internal/config"
	"github.com/pg-onboarding-api/internal/observability"
	"github.com/pg-onboarding-api/internal/transport/http/handler"
	appmiddleware "github.com/pg-onboarding-api/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(observability.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.Verifier != nil {
		authMw = appmiddleware.Auth(deps.Verifier)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	otpRL := deps.OTPLimiter
	if otpRL == nil {
		// 1 request/second per user, burst of 5
		otpRL = appmiddleware.NewRateLimiter(rate.Limit(1), 5)
	}

	healthH := handler.NewHealthHandler(deps.Readiness)
	verifyH := handler.NewVerifyHandler(deps.Verification)
	profileH := handler.NewProfileHandler(deps.Profile)
	uploadH := handler.NewUploadHandler(deps.Upload)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Check)
	r.Handle("/metrics", promhttp.Handler())

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Route("/verify", func(r chi.Router) {
			r.With(otpRL.Limit).Post("/request", verifyH.Request)
			r.With(otpRL.Limit).Post("/confirm", verifyH.Confirm)
			r.Get("/status", verifyH.Status)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/basic-details", profileH.GetBasic())
			r.Post("/basic-details", profileH.SaveBasic())
			r.Get("/professional-details", profileH.GetProfessional())
			r.Post("/professional-details", profileH.SaveProfessional())
			r.Get("/bank-details", profileH.GetBank())
			r.Post("/bank-details", profileH.SaveBank())
			r.Get("/emergency-contact-details", profileH.GetEmergencyContact())
			r.Post("/emergency-contact-details", profileH.SaveEmergencyContact())
			r.Get("/documents", profileH.GetDocuments())
			r.Post("/documents", profileH.SaveDocuments())
			r.Get("/kyc", profileH.GetKYC)
			r.Post("/kyc", profileH.CreateKYC)
			r.Get("/completion", profileH.Completion())
		})

		r.Post("/upload", uploadH.Upload)
		r.Get("/upload", uploadH.List)
		r.Get("/upload/{id}", uploadH.Link)
		r.Delete("/upload/{id}", uploadH.Delete)
	})

	return r
}
