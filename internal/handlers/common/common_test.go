package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"qcr/internal/forms"
	"qcr/internal/measurement"
	"qcr/internal/response"
	"qcr/internal/server"
	"qcr/internal/store"
	"qcr/internal/validation"
)

func TestWriteErrorStatus(t *testing.T) {
	app := &server.App{Log: zap.NewNop()}
	fe := &forms.FormSetErrors{}
	fe.AddField("measurements.0", "pallet_number", "pallet numbers must be unique within a report")
	ve := &validation.ValidationErrors{}
	ve.Add("client_name", "is required")

	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		redirect string
	}{
		{"form set", fe, http.StatusBadRequest, "VALIDATION_ERROR", ""},
		{"fields", ve, http.StatusBadRequest, "VALIDATION_ERROR", ""},
		{"duplicate", &store.DuplicateError{Field: "client_sap_id", Value: "1234567"}, http.StatusBadRequest, "VALIDATION_ERROR", ""},
		{"missing relation", &store.MissingRelationError{Entity: "Client", SapID: "7777777"}, http.StatusBadRequest, "MISSING_RELATION", ""},
		{"state", &measurement.StateError{OrderID: 1, Status: "Done", Err: measurement.ErrReportClosed}, http.StatusConflict, "INVALID_STATE", OrdersRedirect},
		{"wrapped not found", fmt.Errorf("load order: %w", store.ErrNotFound), http.StatusNotFound, "NOT_FOUND", ""},
		{"storage", errors.New("disk I/O error"), http.StatusInternalServerError, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(app, w, tt.err, "")
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var body response.ErrorBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
			if body.Redirect != tt.redirect {
				t.Errorf("redirect = %q, want %q", body.Redirect, tt.redirect)
			}
			if body.Message == "" {
				t.Error("every error carries a message")
			}
			if strings.Contains(body.Message, "disk") {
				t.Error("storage details leaked to the client")
			}
		})
	}
}

func TestWriteErrorUsesFailMessage(t *testing.T) {
	app := &server.App{Log: zap.NewNop()}
	ve := &validation.ValidationErrors{}
	ve.Add("client_sap_id", "must be 7 digits")

	w := httptest.NewRecorder()
	WriteError(app, w, ve, Msg("client", NewError))
	var body response.ErrorBody
	json.NewDecoder(w.Body).Decode(&body)
	if body.Message != "The client was not created. The form has the following errors:" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		param string
		want  int
		ok    bool
	}{
		{"12", 12, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/orders/"+tt.param, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", tt.param)
		r = r.WithContext(contextWithRoute(r, rctx))
		w := httptest.NewRecorder()

		id, ok := PathID(w, r)
		if id != tt.want || ok != tt.ok {
			t.Errorf("PathID(%q) = %d, %v", tt.param, id, ok)
		}
		if !ok && w.Code != http.StatusNotFound {
			t.Errorf("PathID(%q) wrote %d", tt.param, w.Code)
		}
	}
}

func contextWithRoute(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}

func TestMsg(t *testing.T) {
	if got := Msg("measurement_report", CloseSuccess); got != "Measurements completed" {
		t.Errorf("close message = %q", got)
	}
	if got := Msg("client", CloseSuccess); got != "" {
		t.Errorf("clients have no close message, got %q", got)
	}
}
