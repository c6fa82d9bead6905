package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pg-onboarding-api/internal/domain"
	"github.com/pg-onboarding-api/internal/pkg/validate"
	"github.com/pg-onboarding-api/internal/transport/http/middleware"
)

// Envelope is the response wrapper shared by every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, msg string, data interface{}) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: msg, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Success: false, Message: msg})
}

// Client-facing messages for specific domain errors, checked in order.
var knownErrors = []struct {
	err    error
	status int
	msg    string
}{
	{domain.ErrInvalidChannel, http.StatusBadRequest, "Invalid verification type"},
	{domain.ErrNoOutstandingCode, http.StatusNotFound, "No OTP found"},
	{domain.ErrCodeExpired, http.StatusBadRequest, "OTP expired"},
	{domain.ErrCodeMismatch, http.StatusBadRequest, "Invalid OTP"},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many invalid attempts, request a new OTP"},
	{domain.ErrIssuanceInProgress, http.StatusConflict, "An OTP request is already in progress"},
}

// Generic kinds; the message is the error text without the kind suffix.
var errorKinds = []struct {
	err    error
	status int
}{
	{domain.ErrBadRequest, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrTooManyRequests, http.StatusTooManyRequests},
}

// httpError maps a service error onto a status and message. Anything unrecognised is
// logged and reported as a generic 500.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			writeError(w, k.status, k.msg)
			return
		}
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			writeError(w, k.status, publicMessage(err, k.err))
			return
		}
	}
	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
		"err", err,
	)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

func publicMessage(err, kind error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+kind.Error())
	if msg == "" {
		return kind.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// decodeValid reads a JSON body into v and runs its validate tags.
func decodeValid(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// sessionUser returns the authenticated caller. Routes are mounted behind middleware.Auth,
// so a miss here means the handler was wired without it.
func sessionUser(w http.ResponseWriter, r *http.Request) (userID, email string, ok bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", "", false
	}
	return claims.UserID, claims.Email, true
}
