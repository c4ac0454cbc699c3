// Package orders serves production orders and the order list export.
package orders

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"qcr/internal/audit"
	"qcr/internal/export"
	"qcr/internal/forms"
	"qcr/internal/handlers/common"
	"qcr/internal/listing"
	"qcr/internal/measurement"
	"qcr/internal/models"
	"qcr/internal/response"
	"qcr/internal/server"
	"qcr/internal/store"
)

const module = "orders"

type Handler struct {
	*server.App
	Orders *store.OrderStore
}

func New(app *server.App) *Handler {
	return &Handler{App: app, Orders: store.NewOrderStore(app.DB)}
}

// ListOrders handles GET /api/v1/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	common.ServeList(h.App, w, r, listing.Orders, h.Orders)
}

// GetOrder handles GET /api/v1/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	o, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	response.JSON(w, o)
}

// CreateOrder handles POST /api/v1/orders. The batch SAP id may be left
// empty until the measurement report is written.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var f forms.OrderForm
	if !common.Decode(w, r, &f) {
		return
	}
	failMsg := common.Msg("order", common.NewError)

	o, err := f.Clean(false)
	if err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}
	if err := h.Orders.Create(r.Context(), &o); err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionCreate, module, o.ID, "Created order "+o.SapID)
	response.Created(w, o, common.Msg("order", common.NewSuccess))
}

// UpdateOrder handles PUT /api/v1/orders/{id}. A Done order is read-only.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	current, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	if current.Status == models.OrderStatusDone {
		common.WriteError(h.App, w, &measurement.StateError{OrderID: id, Status: current.Status, Err: measurement.ErrReportClosed}, "")
		return
	}

	var f forms.OrderForm
	if !common.Decode(w, r, &f) {
		return
	}
	failMsg := common.Msg("order", common.UpdateError)

	o, err := f.Clean(false)
	if err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}
	o.ID = id
	if err := h.Orders.Update(r.Context(), &o); err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}
	o, err = h.Orders.Get(r.Context(), id)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionUpdate, module, o.ID, "Updated order "+o.SapID)
	response.Message(w, o, common.Msg("order", common.UpdateSuccess))
}

// DeleteOrder handles DELETE /api/v1/orders/{id}. The measurement report
// goes with the order.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	if err := h.Orders.Delete(r.Context(), id); err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionDelete, module, id, "Deleted order")
	response.Message(w, map[string]int{"id": id}, common.Msg("order", common.DeleteSuccess))
}

// ExportOrders handles GET /api/v1/orders/export. It writes every order
// matching the stored filters, in the stored sort order.
func (h *Handler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pred, sort := listing.Current(listing.Orders, common.LoadState(h.App, r))

	items, err := h.Orders.Fetch(ctx, pred, sort, 0, 0)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	f, err := export.Orders(items)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}

	h.Audit.Record(ctx, server.Username(ctx), audit.ActionExport, module, "", "Exported orders")
	name := "orders-" + time.Now().Format("2006-01-02")
	if err := export.Write(w, f, name); err != nil {
		h.Log.Warn("write orders export", zap.Error(err))
	}
}
