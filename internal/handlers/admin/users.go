package admin

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"qcr/internal/audit"
	"qcr/internal/auth"
	"qcr/internal/handlers/common"
	"qcr/internal/models"
	"qcr/internal/response"
	"qcr/internal/server"
	"qcr/internal/validation"
)

type CreateUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

// HandleListUsers handles GET /api/v1/users.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := auth.ListUsers(r.Context(), h.DB)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	response.JSON(w, users)
}

// HandleCreateUser handles POST /api/v1/users.
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !common.Decode(w, r, &req) {
		return
	}
	ctx := r.Context()

	u, err := auth.CreateUser(ctx, h.DB, auth.NewUser{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        req.Role,
	})
	if errors.Is(err, auth.ErrUserExists) {
		response.Invalid(w, "The user was not created", []validation.ValidationError{{Field: "username", Message: err.Error()}})
		return
	}
	if err != nil {
		common.WriteError(h.App, w, err, "The user was not created")
		return
	}

	h.Audit.Record(ctx, server.Username(ctx), audit.ActionCreate, "users", u.ID, "Created user "+u.Username+" ("+u.Role+")")
	response.Created(w, u, "User created")
}

// HandleSetActive handles PUT /api/v1/users/{id}/active. Deactivating a
// user ends their sessions.
func (h *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if !common.Decode(w, r, &req) {
		return
	}
	ctx := r.Context()

	if self, _ := ctx.Value(server.CtxUserID).(int); self == id && !req.Active {
		response.ErrCode(w, "You cannot deactivate your own account", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	err := auth.SetActive(ctx, h.DB, id, req.Active)
	if errors.Is(err, sql.ErrNoRows) {
		response.ErrCode(w, "not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}

	h.Audit.Record(ctx, server.Username(ctx), audit.ActionUpdate, "users", id, "Set active="+strconv.FormatBool(req.Active))
	response.JSON(w, map[string]any{"id": id, "active": req.Active})
}

// HandleListAudit handles GET /api/v1/audit.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, total, err := h.Audit.List(r.Context(), audit.Query{
		Module:   q.Get("module"),
		Username: q.Get("username"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	response.JSONMeta(w, entries, &models.Meta{Total: total, Limit: limit})
}
