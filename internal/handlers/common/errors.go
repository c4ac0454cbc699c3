package common

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"qcr/internal/forms"
	"qcr/internal/measurement"
	"qcr/internal/response"
	"qcr/internal/server"
	"qcr/internal/store"
	"qcr/internal/validation"
)

// OrdersRedirect is where state errors send the client.
const OrdersRedirect = "/api/v1/orders"

// WriteError answers err with the status its kind maps to. failMsg heads
// the body of validation failures; storage errors are logged and hidden.
func WriteError(app *server.App, w http.ResponseWriter, err error, failMsg string) {
	if failMsg == "" {
		failMsg = "The submitted data is invalid"
	}

	var (
		formSet  *forms.FormSetErrors
		fields   *validation.ValidationErrors
		missing  *store.MissingRelationError
		dup      *store.DuplicateError
		stateErr *measurement.StateError
	)
	switch {
	case errors.As(err, &formSet):
		response.Invalid(w, failMsg, formSet.Forms)
	case errors.As(err, &fields):
		response.Invalid(w, failMsg, fields.Errors)
	case errors.As(err, &dup):
		response.Invalid(w, failMsg, []validation.ValidationError{{Field: dup.Field, Message: dup.Error()}})
	case errors.As(err, &missing):
		response.ErrCode(w, missing.Error(), "MISSING_RELATION", http.StatusBadRequest)
	case errors.As(err, &stateErr):
		response.Conflict(w, stateErr.Error(), OrdersRedirect)
	case errors.Is(err, store.ErrNotFound):
		response.ErrCode(w, "not found", "NOT_FOUND", http.StatusNotFound)
	default:
		app.Log.Error("request failed", zap.Error(err))
		response.Err(w, "Internal server error", http.StatusInternalServerError)
	}
}
