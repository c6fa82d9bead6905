package http

import (
	"github.com/pg-onboarding-api/internal/application/profile"
	"github.com/pg-onboarding-api/internal/application/upload"
	"github.com/pg-onboarding-api/internal/application/verification"
	"github.com/pg-onboarding-api/internal/transport/http/handler"
	appmiddleware "github.com/pg-onboarding-api/internal/transport/http/middleware"
)

// Deps holds the services and collaborators the router wires into handlers.
type Deps struct {
	Verification verification.Service
	Profile      profile.Service
	Upload       upload.Service

	// Verifier authenticates bearer tokens. Nil disables authentication, which is only
	// useful in tests.
	Verifier appmiddleware.TokenVerifier

	// OTPLimiter throttles the code request and confirm endpoints per client IP.
	// The caller owns it and stops it on shutdown.
	OTPLimiter *appmiddleware.RateLimiter

	// Readiness checks reported by /health-check/ready, keyed by dependency name.
	Readiness map[string]handler.Pinger
}
