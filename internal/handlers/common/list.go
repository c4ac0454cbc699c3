// Package common holds what every resource handler shares: list-view
// serving over the session state, path parameters, and the mapping of
// domain errors onto HTTP responses.
package common

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"qcr/internal/listing"
	"qcr/internal/models"
	"qcr/internal/response"
	"qcr/internal/server"
	"qcr/internal/session"
)

// LoadState returns the list-view state of the request's session. A store
// failure degrades to an empty state.
func LoadState(app *server.App, r *http.Request) session.State {
	st, err := app.States.Load(r.Context(), server.SessionToken(r.Context()))
	if err != nil {
		app.Log.Warn("load session state", zap.Error(err))
		return session.State{}
	}
	return st
}

// ServeList answers a list endpoint of entity e from src and persists the
// resolved filters, sort and page.
func ServeList[T any](app *server.App, w http.ResponseWriter, r *http.Request, e listing.Entity, src listing.Source[T]) {
	ctx := r.Context()
	st := LoadState(app, r)

	res, st, err := listing.List(ctx, e, src, st, r.URL.Query())
	if err != nil {
		WriteError(app, w, err, "")
		return
	}
	if err := app.States.Save(ctx, server.SessionToken(ctx), st); err != nil {
		app.Log.Warn("save session state", zap.Error(err))
	}

	response.JSONMeta(w, res.Items, &models.Meta{
		Total:      res.Page.Total,
		Page:       res.Page.Number,
		Limit:      res.Page.Size,
		Pages:      res.Page.Pages,
		PagesRange: res.Page.Links,
		SortBy:     res.Sort.Key,
		OrderBy:    string(res.Sort.Direction),
		NextOrder:  string(res.NextDirection),
		Filters:    res.Filters,
	})
}

// PathID parses the {id} URL parameter. It writes a 404 and returns false
// when the parameter is not a positive integer.
func PathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		response.ErrCode(w, "not found", "NOT_FOUND", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// Decode reads a JSON body into v, answering 400 on malformed input.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := response.DecodeBody(r, v); err != nil {
		response.ErrCode(w, "Invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
