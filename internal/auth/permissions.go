package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Permission modules correspond to major feature areas.
const (
	ModuleClients            = "clients"
	ModuleProducts           = "products"
	ModuleSpecifications     = "specifications"
	ModuleOrders             = "orders"
	ModuleMeasurementReports = "measurement_reports"
	ModuleAdmin              = "admin"
)

// Permission actions.
const (
	PermActionView   = "view"
	PermActionCreate = "create"
	PermActionEdit   = "edit"
	PermActionDelete = "delete"
)

// AllModules lists every module.
var AllModules = []string{
	ModuleClients, ModuleProducts, ModuleSpecifications,
	ModuleOrders, ModuleMeasurementReports, ModuleAdmin,
}

// AllActions lists every action.
var AllActions = []string{PermActionView, PermActionCreate, PermActionEdit, PermActionDelete}

// PermissionEntry represents a single permission assignment.
type PermissionEntry struct {
	ID     int    `json:"id"`
	Role   string `json:"role"`
	Module string `json:"module"`
	Action string `json:"action"`
}

// PermCache caches role→permissions for fast middleware lookups.
type PermCache struct {
	sync.RWMutex
	data    map[string]map[string]map[string]bool // role → module → action → true
	updated time.Time
}

// NewPermCache creates a new empty permission cache.
func NewPermCache() *PermCache {
	return &PermCache{
		data: make(map[string]map[string]map[string]bool),
	}
}

// Refresh loads all role_permissions into the in-memory cache.
func (pc *PermCache) Refresh(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, "SELECT role, module, action FROM role_permissions")
	if err != nil {
		return err
	}
	defer rows.Close()

	data := make(map[string]map[string]map[string]bool)
	for rows.Next() {
		var role, module, action string
		if err := rows.Scan(&role, &module, &action); err != nil {
			return err
		}
		if data[role] == nil {
			data[role] = make(map[string]map[string]bool)
		}
		if data[role][module] == nil {
			data[role][module] = make(map[string]bool)
		}
		data[role][module][action] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	pc.Lock()
	pc.data = data
	pc.updated = time.Now()
	pc.Unlock()
	return nil
}

// HasPermission checks whether a role has permission for module+action.
func (pc *PermCache) HasPermission(role, module, action string) bool {
	pc.RLock()
	defer pc.RUnlock()
	if pc.data[role] == nil {
		return false
	}
	return pc.data[role][module][action]
}

// GetRolePermissions returns all permissions for a role.
func (pc *PermCache) GetRolePermissions(role string) []PermissionEntry {
	pc.RLock()
	defer pc.RUnlock()
	var perms []PermissionEntry
	for mod, actions := range pc.data[role] {
		for act := range actions {
			perms = append(perms, PermissionEntry{Role: role, Module: mod, Action: act})
		}
	}
	return perms
}

// InitPermissions seeds the default permissions on an empty table and
// loads them into pc.
func InitPermissions(ctx context.Context, db *sql.DB, pc *PermCache) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM role_permissions").Scan(&count); err != nil {
		return fmt.Errorf("count permissions: %w", err)
	}
	if count == 0 {
		if err := SeedDefaultPermissions(ctx, db); err != nil {
			return fmt.Errorf("seed permissions: %w", err)
		}
	}
	return pc.Refresh(ctx, db)
}

// SeedDefaultPermissions populates the default role permissions.
func SeedDefaultPermissions(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO role_permissions (role, module, action) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	// Admin: everything
	for _, mod := range AllModules {
		for _, act := range AllActions {
			if _, err := stmt.ExecContext(ctx, "admin", mod, act); err != nil {
				return err
			}
		}
	}

	// User: everything except admin module
	for _, mod := range AllModules {
		if mod == ModuleAdmin {
			continue
		}
		for _, act := range AllActions {
			if _, err := stmt.ExecContext(ctx, "user", mod, act); err != nil {
				return err
			}
		}
	}

	// Readonly: view only
	for _, mod := range AllModules {
		if mod == ModuleAdmin {
			continue
		}
		if _, err := stmt.ExecContext(ctx, "readonly", mod, PermActionView); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SetRolePermissions replaces every permission of role with perms.
func SetRolePermissions(ctx context.Context, db *sql.DB, role string, perms []PermissionEntry) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM role_permissions WHERE role = ?", role); err != nil {
		return fmt.Errorf("clear permissions: %w", err)
	}
	for _, p := range perms {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO role_permissions (role, module, action) VALUES (?, ?, ?)",
			role, p.Module, p.Action); err != nil {
			return fmt.Errorf("insert permission: %w", err)
		}
	}
	return tx.Commit()
}

// MapAPIPathToPermission maps an API path + method to (module, action).
// Returns empty strings if no permission mapping exists (passthrough).
func MapAPIPathToPermission(apiPath, method string) (module, action string) {
	parts := strings.Split(apiPath, "/")
	if len(parts) == 0 {
		return "", ""
	}

	switch method {
	case "GET", "HEAD":
		action = PermActionView
	case "POST":
		action = PermActionCreate
	case "PUT", "PATCH":
		action = PermActionEdit
	case "DELETE":
		action = PermActionDelete
	}

	switch parts[0] {
	case "clients":
		module = ModuleClients
	case "products":
		module = ModuleProducts
		// products/{id}/specification/issue and products/{id}/issued
		if len(parts) >= 3 && (parts[2] == "issued" || (parts[2] == "specification" && len(parts) >= 4)) {
			module = ModuleSpecifications
		}
	case "issued-specifications":
		module = ModuleSpecifications
	case "orders":
		module = ModuleOrders
		// orders/{id}/report[/close|/export]
		if len(parts) >= 3 && parts[2] == "report" {
			module = ModuleMeasurementReports
			if len(parts) >= 4 && parts[3] == "close" {
				action = PermActionEdit
			}
		}
	case "users", "audit", "permissions":
		module = ModuleAdmin
	default:
		return "", ""
	}

	return module, action
}
