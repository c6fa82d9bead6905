package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pg-onboarding-api/internal/application/verification"
	"github.com/pg-onboarding-api/internal/domain"
)

// VerifyHandler serves the OTP request/confirm/status endpoints.
type VerifyHandler struct {
	svc verification.Service
}

func NewVerifyHandler(svc verification.Service) *VerifyHandler { return &VerifyHandler{svc: svc} }

type verifyRequest struct {
	Type string `json:"type"`
	OTP  string `json:"otp"`
}

func (h *VerifyHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID, email, ok := sessionUser(w, r)
	if !ok {
		return
	}
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := h.svc.RequestCode(r.Context(), userID, email, req.Type)
	if errors.Is(err, domain.ErrAlreadyVerified) {
		writeError(w, http.StatusConflict, req.Type+" is already verified.")
		return
	}
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, res.Message, nil)
}

func (h *VerifyHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := sessionUser(w, r)
	if !ok {
		return
	}
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := h.svc.ConfirmCode(r.Context(), userID, req.Type, req.OTP)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, res.Message, nil)
}

func (h *VerifyHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := sessionUser(w, r)
	if !ok {
		return
	}
	st, err := h.svc.Status(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, "", st)
}
