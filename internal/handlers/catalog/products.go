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

const (
	productModule       = "products"
	specificationModule = "specifications"
)

// ListProducts handles GET /api/v1/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	common.ServeList(h.App, w, r, listing.Products, h.Products)
}

// GetProduct handles GET /api/v1/products/{id}, specification included.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	p, err := h.Products.Get(r.Context(), id)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	response.JSON(w, p)
}

// CreateProduct handles POST /api/v1/products. The product and its
// specification are validated and stored together.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var f forms.ProductWithSpecForm
	if !common.Decode(w, r, &f) {
		return
	}
	failMsg := common.Msg("product", common.NewError)

	p, err := f.Clean()
	if err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}
	if err := h.Products.Create(r.Context(), &p); err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionCreate, productModule, p.ID, "Created product "+p.SapID)
	response.Created(w, p, common.Msg("product", common.NewSuccess))
}

// UpdateProduct handles PUT /api/v1/products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	var f forms.ProductWithSpecForm
	if !common.Decode(w, r, &f) {
		return
	}
	failMsg := common.Msg("product", common.UpdateError)

	p, err := f.Clean()
	if err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}
	p.ID = id
	if err := h.Products.Update(r.Context(), &p); err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionUpdate, productModule, p.ID, "Updated product "+p.SapID)
	response.Message(w, p, common.Msg("product", common.UpdateSuccess))
}

// DeleteProduct handles DELETE /api/v1/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	if err := h.Products.Delete(r.Context(), id); err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionDelete, productModule, id, "Deleted product")
	response.Message(w, map[string]int{"id": id}, common.Msg("product", common.DeleteSuccess))
}

// IssueSpecification handles POST /api/v1/products/{id}/specification/issue.
func (h *Handler) IssueSpecification(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	var f forms.IssueForm
	if !common.Decode(w, r, &f) {
		return
	}
	failMsg := common.Msg("product", common.IssueError)

	clientSapID, date, err := f.Clean()
	if err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}
	issued, err := h.Products.Issue(r.Context(), id, h.Clients, clientSapID, date)
	if err != nil {
		common.WriteError(h.App, w, err, failMsg)
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionIssue, specificationModule, issued.ID,
		"Issued specification of product "+issued.ProductSapID+" to client "+issued.ClientSapID)
	response.Created(w, issued, common.Msg("product", common.IssueSuccess))
}

// ListIssued handles GET /api/v1/products/{id}/issued.
func (h *Handler) ListIssued(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	if _, err := h.Products.Get(r.Context(), id); err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	items, err := h.Products.ListIssued(r.Context(), id)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	response.JSON(w, items)
}

// GetIssued handles GET /api/v1/issued-specifications/{id}.
func (h *Handler) GetIssued(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	is, err := h.Products.GetIssued(r.Context(), id)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	response.JSON(w, is)
}
