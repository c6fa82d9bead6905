package handler

import (
	"context"
	"net/http"

	"github.com/pg-onboarding-api/internal/application/profile"
	"github.com/pg-onboarding-api/internal/domain"
)

// ProfileHandler serves the onboarding profile sections.
type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler { return &ProfileHandler{svc: svc} }

// getFor and saveFor share the request plumbing of every profile section.
func getFor[T any](get func(ctx context.Context, userID string) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := sessionUser(w, r)
		if !ok {
			return
		}
		v, err := get(r.Context(), userID)
		if err != nil {
			httpError(w, r, err)
			return
		}
		writeOK(w, "", v)
	}
}

func saveFor[In, Out any](entity string, save func(ctx context.Context, userID, email string, in In) (*Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, email, ok := sessionUser(w, r)
		if !ok {
			return
		}
		var in In
		if !decodeValid(w, r, &in) {
			return
		}
		v, err := save(r.Context(), userID, email, in)
		if err != nil {
			httpError(w, r, err)
			return
		}
		writeOK(w, entity+" saved", v)
	}
}

// ignoreEmail adapts a save that does not need the caller's email.
func ignoreEmail[In, Out any](f func(ctx context.Context, userID string, in In) (*Out, error)) func(context.Context, string, string, In) (*Out, error) {
	return func(ctx context.Context, userID, _ string, in In) (*Out, error) {
		return f(ctx, userID, in)
	}
}

func (h *ProfileHandler) GetBasic() http.HandlerFunc { return getFor(h.svc.GetBasic) }

func (h *ProfileHandler) SaveBasic() http.HandlerFunc {
	return saveFor[domain.ProfileInput]("Basic details", h.svc.SaveBasic)
}

func (h *ProfileHandler) GetProfessional() http.HandlerFunc { return getFor(h.svc.GetProfessional) }

func (h *ProfileHandler) SaveProfessional() http.HandlerFunc {
	return saveFor("Professional details", ignoreEmail(h.svc.SaveProfessional))
}

func (h *ProfileHandler) GetBank() http.HandlerFunc { return getFor(h.svc.GetBank) }

func (h *ProfileHandler) SaveBank() http.HandlerFunc {
	return saveFor("Bank details", ignoreEmail(h.svc.SaveBank))
}

func (h *ProfileHandler) GetEmergencyContact() http.HandlerFunc {
	return getFor(h.svc.GetEmergencyContact)
}

func (h *ProfileHandler) SaveEmergencyContact() http.HandlerFunc {
	return saveFor("Emergency contact", ignoreEmail(h.svc.SaveEmergencyContact))
}

func (h *ProfileHandler) GetDocuments() http.HandlerFunc { return getFor(h.svc.GetDocuments) }

func (h *ProfileHandler) SaveDocuments() http.HandlerFunc {
	return saveFor("Documents", ignoreEmail(h.svc.SaveDocuments))
}

func (h *ProfileHandler) Completion() http.HandlerFunc { return getFor(h.svc.Completion) }

func (h *ProfileHandler) GetKYC(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := sessionUser(w, r)
	if !ok {
		return
	}
	k, err := h.svc.GetKYC(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, "KYC fetched", k)
}

func (h *ProfileHandler) CreateKYC(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := sessionUser(w, r)
	if !ok {
		return
	}
	k, err := h.svc.CreateKYC(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Message: "KYC created", Data: k})
}
