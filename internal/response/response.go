package response

import (
	"encoding/json"
	"net/http"

	"qcr/internal/models"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Errors   any    `json:"errors,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func write(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// JSON writes a successful API response with the given data.
func JSON(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, models.APIResponse{Data: data})
}

// Created writes a 201 response carrying data and a user message.
func Created(w http.ResponseWriter, data interface{}, message string) {
	write(w, http.StatusCreated, models.APIResponse{Data: data, Message: message})
}

// Message writes a 200 response carrying data and a user message.
func Message(w http.ResponseWriter, data interface{}, message string) {
	write(w, http.StatusOK, models.APIResponse{Data: data, Message: message})
}

// JSONMeta writes a successful API response with list metadata.
func JSONMeta(w http.ResponseWriter, data interface{}, meta *models.Meta) {
	write(w, http.StatusOK, models.APIResponse{Data: data, Meta: meta})
}

// Err writes a JSON error response with the given message and HTTP status code.
func Err(w http.ResponseWriter, msg string, code int) {
	write(w, code, ErrorBody{Message: msg})
}

// ErrCode is Err with a machine-readable code.
func ErrCode(w http.ResponseWriter, msg, errCode string, code int) {
	write(w, code, ErrorBody{Message: msg, Code: errCode})
}

// Invalid writes a 400 with field errors.
func Invalid(w http.ResponseWriter, msg string, errs any) {
	write(w, http.StatusBadRequest, ErrorBody{Message: msg, Code: "VALIDATION_ERROR", Errors: errs})
}

// Conflict writes a 409 pointing the client at where to go instead.
func Conflict(w http.ResponseWriter, msg, redirect string) {
	write(w, http.StatusConflict, ErrorBody{Message: msg, Code: "INVALID_STATE", Redirect: redirect})
}

// DecodeBody decodes a JSON request body into the given value.
func DecodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
