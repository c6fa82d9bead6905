package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pg-onboarding-api/internal/application/upload"
	"github.com/pg-onboarding-api/internal/application/verification"
	"github.com/pg-onboarding-api/internal/domain"
	jwtinfra "github.com/pg-onboarding-api/internal/infrastructure/jwt"
	"github.com/pg-onboarding-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func authed(r *http.Request) *http.Request {
	claims := &jwtinfra.Claims{UserID: "u1", Email: "a@example.com"}
	return r.WithContext(middleware.WithClaims(r.Context(), claims))
}

func jsonReq(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// --- verification service mock ---

type mockVerification struct{ mock.Mock }

func (m *mockVerification) RequestCode(ctx context.Context, userID, email, channel string) (*verification.Result, error) {
	args := m.Called(ctx, userID, email, channel)
	if v := args.Get(0); v != nil {
		return v.(*verification.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVerification) ConfirmCode(ctx context.Context, userID, channel, otp string) (*verification.Result, error) {
	args := m.Called(ctx, userID, channel, otp)
	if v := args.Get(0); v != nil {
		return v.(*verification.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVerification) Status(ctx context.Context, userID string) (*domain.VerificationStatus, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*domain.VerificationStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- upload service mock ---

type mockUpload struct{ mock.Mock }

func (m *mockUpload) Upload(ctx context.Context, in upload.Input) (*domain.File, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*domain.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUpload) List(ctx context.Context, userID string) ([]domain.File, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]domain.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUpload) Link(ctx context.Context, fileID, userID string) (string, error) {
	args := m.Called(ctx, fileID, userID)
	return args.String(0), args.Error(1)
}

func (m *mockUpload) Delete(ctx context.Context, fileID, userID string) error {
	return m.Called(ctx, fileID, userID).Error(0)
}

// --- profile service mock ---

type mockProfile struct{ mock.Mock }

func ret[T any](args mock.Arguments) (*T, error) {
	if v := args.Get(0); v != nil {
		return v.(*T), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfile) GetBasic(ctx context.Context, userID string) (*domain.Profile, error) {
	return ret[domain.Profile](m.Called(ctx, userID))
}

func (m *mockProfile) SaveBasic(ctx context.Context, userID, email string, in domain.ProfileInput) (*domain.Profile, error) {
	return ret[domain.Profile](m.Called(ctx, userID, email, in))
}

func (m *mockProfile) GetProfessional(ctx context.Context, userID string) (*domain.ProfessionalDetails, error) {
	return ret[domain.ProfessionalDetails](m.Called(ctx, userID))
}

func (m *mockProfile) SaveProfessional(ctx context.Context, userID string, in domain.ProfessionalDetailsInput) (*domain.ProfessionalDetails, error) {
	return ret[domain.ProfessionalDetails](m.Called(ctx, userID, in))
}

func (m *mockProfile) GetBank(ctx context.Context, userID string) (*domain.BankDetails, error) {
	return ret[domain.BankDetails](m.Called(ctx, userID))
}

func (m *mockProfile) SaveBank(ctx context.Context, userID string, in domain.BankDetailsInput) (*domain.BankDetails, error) {
	return ret[domain.BankDetails](m.Called(ctx, userID, in))
}

func (m *mockProfile) GetEmergencyContact(ctx context.Context, userID string) (*domain.EmergencyContact, error) {
	return ret[domain.EmergencyContact](m.Called(ctx, userID))
}

func (m *mockProfile) SaveEmergencyContact(ctx context.Context, userID string, in domain.EmergencyContactInput) (*domain.EmergencyContact, error) {
	return ret[domain.EmergencyContact](m.Called(ctx, userID, in))
}

func (m *mockProfile) GetDocuments(ctx context.Context, userID string) (*domain.Documents, error) {
	return ret[domain.Documents](m.Called(ctx, userID))
}

func (m *mockProfile) SaveDocuments(ctx context.Context, userID string, in domain.DocumentsInput) (*domain.Documents, error) {
	return ret[domain.Documents](m.Called(ctx, userID, in))
}

func (m *mockProfile) GetKYC(ctx context.Context, userID string) (*domain.KYC, error) {
	return ret[domain.KYC](m.Called(ctx, userID))
}

func (m *mockProfile) CreateKYC(ctx context.Context, userID string) (*domain.KYC, error) {
	return ret[domain.KYC](m.Called(ctx, userID))
}

func (m *mockProfile) Completion(ctx context.Context, userID string) (*domain.Completion, error) {
	return ret[domain.Completion](m.Called(ctx, userID))
}
