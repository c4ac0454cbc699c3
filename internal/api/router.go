// Package api wires the HTTP routes of the service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"qcr/internal/handlers/admin"
	"qcr/internal/handlers/catalog"
	"qcr/internal/handlers/orders"
	"qcr/internal/handlers/quality"
	"qcr/internal/response"
	"qcr/internal/server"
)

// NewRouter builds the router: /healthz, /metrics and /ws beside the JSON
// API under /api/v1. Everything under /api/v1 except login needs a session
// and the permission of its route.
func NewRouter(app *server.App) *chi.Mux {
	adminH := admin.New(app)
	catalogH := catalog.New(app)
	ordersH := orders.New(app)
	qualityH := quality.New(app)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(server.AccessLog(app.Log))
	r.Use(server.SecurityHeaders)
	r.Use(app.Metrics.Middleware)

	r.Get("/healthz", health(app))
	if app.Metrics != nil {
		r.Handle("/metrics", app.Metrics.Handler())
	}
	r.With(server.RequireAuth(app.DB, app.Policy)).Handle("/ws", app.Hub)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", adminH.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(server.RequireAuth(app.DB, app.Policy))
			r.Use(server.RequireRBAC(app.PermCache))
			r.Use(server.GzipMiddleware)

			r.Post("/auth/logout", adminH.HandleLogout)
			r.Get("/auth/me", adminH.HandleMe)
			r.Get("/auth/permissions", adminH.HandleMyPermissions)
			r.Post("/auth/password", adminH.HandleChangePassword)

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", catalogH.ListClients)
				r.Post("/", catalogH.CreateClient)
				r.Get("/{id}", catalogH.GetClient)
				r.Put("/{id}", catalogH.UpdateClient)
				r.Delete("/{id}", catalogH.DeleteClient)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", catalogH.ListProducts)
				r.Post("/", catalogH.CreateProduct)
				r.Get("/{id}", catalogH.GetProduct)
				r.Put("/{id}", catalogH.UpdateProduct)
				r.Delete("/{id}", catalogH.DeleteProduct)
				r.Get("/{id}/issued", catalogH.ListIssued)
				r.Post("/{id}/specification/issue", catalogH.IssueSpecification)
			})
			r.Get("/issued-specifications/{id}", catalogH.GetIssued)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordersH.ListOrders)
				r.Post("/", ordersH.CreateOrder)
				r.Get("/export", ordersH.ExportOrders)
				r.Get("/{id}", ordersH.GetOrder)
				r.Put("/{id}", ordersH.UpdateOrder)
				r.Delete("/{id}", ordersH.DeleteOrder)

				r.Get("/{id}/report", qualityH.GetReport)
				r.Post("/{id}/report", qualityH.CreateReport)
				r.Put("/{id}/report", qualityH.UpdateReport)
				r.Post("/{id}/report/close", qualityH.CloseReport)
				r.Get("/{id}/report/export", qualityH.ExportReport)
			})

			r.Get("/users", adminH.HandleListUsers)
			r.Post("/users", adminH.HandleCreateUser)
			r.Put("/users/{id}/active", adminH.HandleSetActive)
			r.Get("/permissions", adminH.HandleListPermissions)
			r.Put("/permissions/{role}", adminH.HandleSetPermissions)
			r.Get("/audit", adminH.HandleListAudit)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.ErrCode(w, "not found", "NOT_FOUND", http.StatusNotFound)
	})
	return r
}

func health(app *server.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := app.DB.PingContext(r.Context()); err != nil {
			response.ErrCode(w, "database unavailable", "UNAVAILABLE", http.StatusServiceUnavailable)
			return
		}
		response.JSON(w, map[string]string{"status": "ok"})
	}
}
