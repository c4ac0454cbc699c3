// Package quality serves the measurement report of a production order.
package quality

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"qcr/internal/audit"
	"qcr/internal/export"
	"qcr/internal/forms"
	"qcr/internal/handlers/common"
	"qcr/internal/measurement"
	"qcr/internal/models"
	"qcr/internal/response"
	"qcr/internal/server"
	"qcr/internal/store"
	"qcr/internal/validation"
)

const module = "measurement_reports"

// Workflow outcomes counted per action.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

type Handler struct {
	*server.App
	Reports *measurement.Service
}

func New(app *server.App) *Handler {
	return &Handler{App: app, Reports: measurement.NewService(app.DB, app.Log)}
}

// ReportView is an order with its measurement report, if any.
type ReportView struct {
	Order  models.Order              `json:"order"`
	Report *models.MeasurementReport `json:"report"`
}

func outcome(err error) string {
	var (
		formSet  *forms.FormSetErrors
		fields   *validation.ValidationErrors
		dup      *store.DuplicateError
		missing  *store.MissingRelationError
		stateErr *measurement.StateError
	)
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &formSet), errors.As(err, &fields), errors.As(err, &dup), errors.As(err, &missing):
		return outcomeInvalid
	case errors.As(err, &stateErr), errors.Is(err, store.ErrNotFound):
		return outcomeRejected
	}
	return outcomeError
}

// GetReport handles GET /api/v1/orders/{id}/report. The report is null
// while the order is Started.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	order, report, err := h.Reports.Get(r.Context(), id)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	response.JSON(w, ReportView{Order: order, Report: report})
}

// CreateReport handles POST /api/v1/orders/{id}/report.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	var sub forms.ReportSubmission
	if !common.Decode(w, r, &sub) {
		return
	}

	order, report, err := h.Reports.Create(r.Context(), id, sub)
	h.Metrics.ReportTransition("create", outcome(err))
	if err != nil {
		common.WriteError(h.App, w, err, common.Msg("measurement_report", common.NewError))
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionCreate, module, id,
		fmt.Sprintf("Added report with %d measurements to order %s", len(report.Measurements), order.SapID))
	response.Created(w, ReportView{Order: order, Report: &report}, common.Msg("measurement_report", common.NewSuccess))
}

// UpdateReport handles PUT /api/v1/orders/{id}/report. A Done order is
// refused before its body is read.
func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	current, err := h.Reports.Orders.Get(r.Context(), id)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	if current.Status == models.OrderStatusDone {
		h.Metrics.ReportTransition("update", outcomeRejected)
		common.WriteError(h.App, w, &measurement.StateError{OrderID: id, Status: current.Status, Err: measurement.ErrReportClosed}, "")
		return
	}

	var sub forms.ReportSubmission
	if !common.Decode(w, r, &sub) {
		return
	}

	order, report, err := h.Reports.Update(r.Context(), id, sub)
	h.Metrics.ReportTransition("update", outcome(err))
	if err != nil {
		common.WriteError(h.App, w, err, common.Msg("measurement_report", common.UpdateError))
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionUpdate, module, id,
		fmt.Sprintf("Updated report of order %s, %d measurements", order.SapID, len(report.Measurements)))
	response.Message(w, ReportView{Order: order, Report: &report}, common.Msg("measurement_report", common.UpdateSuccess))
}

// CloseReport handles POST /api/v1/orders/{id}/report/close.
func (h *Handler) CloseReport(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}

	order, err := h.Reports.Close(r.Context(), id)
	h.Metrics.ReportTransition("close", outcome(err))
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}

	h.Audit.Record(r.Context(), server.Username(r.Context()), audit.ActionClose, module, id, "Closed report of order "+order.SapID)
	response.Message(w, order, common.Msg("measurement_report", common.CloseSuccess))
}

// ExportReport handles GET /api/v1/orders/{id}/report/export.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	id, ok := common.PathID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	order, report, err := h.Reports.Get(ctx, id)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	if report == nil {
		common.WriteError(h.App, w, &measurement.StateError{OrderID: id, Status: order.Status, Err: measurement.ErrNoReport}, "")
		return
	}

	f, err := export.Report(order, *report)
	if err != nil {
		common.WriteError(h.App, w, err, "")
		return
	}
	h.Audit.Record(ctx, server.Username(ctx), audit.ActionExport, module, id, "Exported report of order "+order.SapID)

	name := fmt.Sprintf("report-%d", id)
	if order.SapID != "" {
		name = "report-" + order.SapID
	}
	if err := export.Write(w, f, name); err != nil {
		h.Log.Warn("write report export", zap.Error(err), zap.Int("order_id", id))
	}
}
