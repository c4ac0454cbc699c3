// Package admin serves login sessions, users, role permissions and the
// audit log.
package admin

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"qcr/internal/audit"
	"qcr/internal/auth"
	"qcr/internal/handlers/common"
	"qcr/internal/models"
	"qcr/internal/response"
	"qcr/internal/server"
)

type Handler struct {
	*server.App
}

func New(app *server.App) *Handler {
	return &Handler{App: app}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleLogin authenticates a user and starts a session.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !common.Decode(w, r, &req) {
		return
	}
	ctx := r.Context()

	u, err := auth.Authenticate(ctx, h.DB, req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		response.ErrCode(w, common.Msg("user", common.LoginFail)+" invalid username or password", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	case errors.Is(err, auth.ErrAccountLocked):
		response.ErrCode(w, "Account temporarily locked due to too many failed login attempts. Try again later.", "LOCKED", http.StatusForbidden)
		return
	case errors.Is(err, auth.ErrAccountDisabled):
		response.ErrCode(w, common.Msg("user", common.Inactive), "FORBIDDEN", http.StatusForbidden)
		return
	case err != nil:
		common.WriteError(h.App, w, err, "")
		return
	}

	token, expires, err := auth.CreateSession(ctx, h.DB, u.ID, h.Policy)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	server.SetSessionCookie(w, r, token, expires)

	h.Audit.Record(ctx, u.Username, audit.ActionLogin, "users", u.ID, "Logged in")
	response.Message(w, map[string]models.User{"user": u}, common.Msg("user", common.LoginSuccess))
}

// HandleLogout ends the session with its list-view state.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := server.SessionToken(ctx)

	if err := h.States.Delete(ctx, token); err != nil {
		h.Log.Warn("delete session state", zap.Error(err))
	}
	if err := auth.DeleteSession(ctx, h.DB, token); err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	server.ClearSessionCookie(w)

	h.Audit.Record(ctx, server.Username(ctx), audit.ActionLogout, "users", ctx.Value(server.CtxUserID), "Logged out")
	response.Message(w, map[string]string{"status": "ok"}, common.Msg("user", common.LogoutSuccess))
}

// HandleMe returns the logged-in user.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := ctx.Value(server.CtxUserID).(int)
	role, _ := ctx.Value(server.CtxRole).(string)
	response.JSON(w, map[string]models.User{
		"user": {ID: id, Username: server.Username(ctx), Role: role, Active: 1},
	})
}

// HandleMyPermissions returns the permissions of the caller's role.
func (h *Handler) HandleMyPermissions(w http.ResponseWriter, r *http.Request) {
	role, _ := r.Context().Value(server.CtxRole).(string)
	perms := h.PermCache.GetRolePermissions(role)
	if perms == nil {
		perms = []auth.PermissionEntry{}
	}
	response.JSON(w, perms)
}

// HandleChangePassword changes the caller's password. Other sessions of the
// user are logged out.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if !common.Decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	id, _ := ctx.Value(server.CtxUserID).(int)

	err := auth.ChangePassword(ctx, h.DB, id, req.CurrentPassword, req.NewPassword, server.SessionToken(ctx))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		response.ErrCode(w, common.Msg("user", common.PasswordFail)+" current password is incorrect", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	if err != nil {
		common.WriteError(h.App, w, err, common.Msg("user", common.PasswordFail))
		return
	}

	h.Audit.Record(ctx, server.Username(ctx), audit.ActionUpdate, "users", id, "Changed password")
	response.Message(w, map[string]string{"status": "ok"}, common.Msg("user", common.PasswordChange))
}
