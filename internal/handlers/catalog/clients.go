package catalog

import (
	"net/http"

	"qcr/internal/audit"
	"qcr/internal/forms"
	"qcr/internal/handlers/common"
	"qcr/internal/listing"
	"qcr/internal/response"
	"qcr/internal/server"
)

const clientModule = "clients"

// ListClients handles GET /api/v1/clients.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	common.ServeList(h.App, w, r, listing.Clients, h.Clients)
}

// GetClient handles GET /api/v1/clients/{id}.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	c, err := h.Clients.Get(r.Context(), id)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	response.JSON(w, c)
}

// CreateClient handles POST /api/v1/clients.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var f forms.ClientForm
	if !common.Decode(w, r, &f) {
		return
	}
	failMsg := common.Msg("client", common.NewError)

	c, err := f.Clean()
	if err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}
	if err := h.Clients.Create(r.Context(), &c); err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionCreate, clientModule, c.ID, "Created client "+c.SapID)
	response.Created(w, c, common.Msg("client", common.NewSuccess))
}

// UpdateClient handles PUT /api/v1/clients/{id}.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	var f forms.ClientForm
	if !common.Decode(w, r, &f) {
		return
	}
	failMsg := common.Msg("client", common.UpdateError)

	c, err := f.Clean()
	if err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}
	c.ID = id
	if err := h.Clients.Update(r.Context(), c); err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionUpdate, clientModule, c.ID, "Updated client "+c.SapID)
	response.Message(w, c, common.Msg("client", common.UpdateSuccess))
}

// DeleteClient handles DELETE /api/v1/clients/{id}. Orders and issued
// specifications of the client go with it.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	if err := h.Clients.Delete(r.Context(), id); err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionDelete, clientModule, id, "Deleted client")
	response.Message(w, map[string]int{"id": id}, common.Msg("client", common.DeleteSuccess))
}
