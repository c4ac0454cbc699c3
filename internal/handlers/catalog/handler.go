// Package catalog serves clients, products with their specifications, and
// specifications issued to clients.
package catalog

import (
	"qcr/internal/server"
	"qcr/internal/store"
)

type Handler struct {
	*server.App
	Clients  *store.ClientStore
	Products *store.ProductStore
}

func New(app *server.App) *Handler {
	return &Handler{
		App:      app,
		Clients:  store.NewClientStore(app.DB),
		Products: store.NewProductStore(app.DB),
	}
}
