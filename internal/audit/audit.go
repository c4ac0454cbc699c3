package audit

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"qcr/internal/models"
	"qcr/internal/websocket"
)

// Action constants.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionClose  = "close"
	ActionIssue  = "issue"
	ActionExport = "export"
	ActionLogin  = "login"
	ActionLogout = "logout"
)

// Recorder writes audit entries and announces record changes on the hub.
type Recorder struct {
	DB  *sql.DB
	Hub *websocket.Hub
	Log *zap.Logger
}

func NewRecorder(db *sql.DB, hub *websocket.Hub, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{DB: db, Hub: hub, Log: log}
}

// Record stores one audit entry. Failures are logged and never reach the
// caller, whose change has already been committed.
func (r *Recorder) Record(ctx context.Context, username, action, module string, recordID any, summary string) {
	if username == "" {
		username = "system"
	}
	id := fmt.Sprint(recordID)
	_, err := r.DB.ExecContext(ctx, "INSERT INTO audit_log (username, action, module, record_id, summary) VALUES (?, ?, ?, ?, ?)",
		username, action, module, id, summary)
	if err != nil {
		r.Log.Error("audit log write failed", zap.Error(err), zap.String("module", module), zap.String("action", action))
	}
	if r.Hub != nil && action != ActionExport && action != ActionLogin && action != ActionLogout {
		r.Hub.BroadcastChange(module, action, recordID)
	}
}

// Query narrows List.
type Query struct {
	Module   string
	Username string
	Limit    int
	Offset   int
}

// List returns audit entries newest first with the total matching count.
func (r *Recorder) List(ctx context.Context, q Query) ([]models.AuditEntry, int, error) {
	where := " WHERE 1=1"
	var args []any
	if q.Module != "" {
		where += " AND module = ?"
		args = append(args, q.Module)
	}
	if q.Username != "" {
		where += " AND username = ?"
		args = append(args, q.Username)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit log: %w", err)
	}

	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx, "SELECT id, username, action, module, record_id, summary, COALESCE(created_at, '') FROM audit_log"+
		where+" ORDER BY id DESC LIMIT ? OFFSET ?", append(args, limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit log: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.Module, &e.RecordID, &e.Summary, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
