package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"qcr/internal/audit"
	"qcr/internal/auth"
	"qcr/internal/handlers/common"
	"qcr/internal/response"
	"qcr/internal/server"
	"qcr/internal/validation"
)

// HandleListPermissions lists the permissions of every role, or of ?role=X.
func (h *Handler) HandleListPermissions(w http.ResponseWriter, r *http.Request) {
	roleFilter := r.URL.Query().Get("role")
	roles := validation.ValidRoles
	if roleFilter != "" {
		roles = []string{roleFilter}
	}

	perms := []auth.PermissionEntry{}
	for _, role := range roles {
		perms = append(perms, h.PermCache.GetRolePermissions(role)...)
	}
	response.JSON(w, perms)
}

// HandleSetPermissions replaces all permissions of the {role} URL parameter
// and reloads the cache.
func (h *Handler) HandleSetPermissions(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	ve := &validation.ValidationErrors{}
	validation.ValidateEnum(ve, "role", role, validation.ValidRoles)
	if ve.HasErrors() {
		response.Invalid(w, "Unknown role", ve.Errors)
		return
	}

	var req struct {
		Permissions []struct {
			Module string `json:"module"`
			Action string `json:"action"`
		} `json:"permissions"`
	}
	if !common.Decode(w, r, &req) {
		return
	}

	seen := make(map[string]bool)
	var perms []auth.PermissionEntry
	for _, p := range req.Permissions {
		validation.RequireField(ve, "module", p.Module)
		validation.RequireField(ve, "action", p.Action)
		validation.ValidateEnum(ve, "module", p.Module, auth.AllModules)
		validation.ValidateEnum(ve, "action", p.Action, auth.AllActions)
		key := p.Module + ":" + p.Action
		if !seen[key] {
			seen[key] = true
			perms = append(perms, auth.PermissionEntry{Role: role, Module: p.Module, Action: p.Action})
		}
	}
	if ve.HasErrors() {
		response.Invalid(w, "The permissions were not updated", ve.Errors)
		return
	}

	ctx := r.Context()
	if err := auth.SetRolePermissions(ctx, h.DB, role, perms); err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	if err := h.PermCache.Refresh(ctx, h.DB); err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}

	h.Audit.Record(ctx, server.Username(ctx), audit.ActionUpdate, "permissions", role, "Replaced permissions")
	response.JSON(w, map[string]string{"status": "updated"})
}
