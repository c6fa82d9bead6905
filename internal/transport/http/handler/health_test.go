package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func withAction(r *http.Request, action string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("action", action)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHealth_Ping(t *testing.T) {
	h := NewHealthHandler(nil)
	w := httptest.NewRecorder()
	h.Check(w, withAction(httptest.NewRequest(http.MethodGet, "/health-check/ping", nil), "ping"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", decodeEnvelope(t, w).Message)
}

func TestHealth_ReadyReportsFailures(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"dynamo": PingFunc(func(context.Context) error { return nil }),
		"redis":  PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	w := httptest.NewRecorder()
	h.Check(w, withAction(httptest.NewRequest(http.MethodGet, "/health-check/ready", nil), "ready"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.NotContains(t, w.Body.String(), "dynamo")
}

func TestHealth_UnknownAction(t *testing.T) {
	h := NewHealthHandler(nil)
	w := httptest.NewRecorder()
	h.Check(w, withAction(httptest.NewRequest(http.MethodGet, "/health-check/nope", nil), "nope"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
