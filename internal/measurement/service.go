// Package measurement runs the measurement report lifecycle of an order:
// Started (no report) -> Open -> Done.
package measurement

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"qcr/internal/database"
	"qcr/internal/forms"
	"qcr/internal/models"
	"qcr/internal/store"
)

var (
	ErrReportExists = errors.New("a measurement report already exists for this order")
	ErrNoReport     = errors.New("this order has no measurement report")
	ErrReportClosed = errors.New("the measurement report of this order is closed")
)

// StateError rejects an action the order's current status does not allow.
type StateError struct {
	OrderID int
	Status  string
	Err     error
}

func (e *StateError) Error() string { return e.Err.Error() }

func (e *StateError) Unwrap() error { return e.Err }

type Service struct {
	DB      *sql.DB
	Orders  *store.OrderStore
	Reports *store.ReportStore
	Log     *zap.Logger
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		DB:      db,
		Orders:  store.NewOrderStore(db),
		Reports: store.NewReportStore(),
		Log:     log,
	}
}

// Get returns an order with its report. The report is nil while the order
// is still Started.
func (s *Service) Get(ctx context.Context, orderID int) (models.Order, *models.MeasurementReport, error) {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return order, nil, err
	}
	report, err := s.Reports.GetByOrder(ctx, s.DB, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return order, nil, nil
	}
	if err != nil {
		return order, nil, err
	}
	return order, &report, nil
}

// Create saves the order, a new report and its measurements from one
// submission and opens the report. Nothing is written unless every form is
// valid and both relations resolve.
func (s *Service) Create(ctx context.Context, orderID int, sub forms.ReportSubmission) (models.Order, models.MeasurementReport, error) {
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		current, err := s.Orders.GetWith(ctx, tx, orderID)
		if err != nil {
			return err
		}
		_, err = s.Reports.GetByOrder(ctx, tx, orderID)
		if err == nil {
			return &StateError{OrderID: orderID, Status: current.Status, Err: ErrReportExists}
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		order, report, err := sub.Clean()
		if err != nil {
			return err
		}
		order.ID = orderID
		if err := s.Orders.UpdateWith(ctx, tx, &order); err != nil {
			return err
		}
		report.OrderID = orderID
		for i := range report.Measurements {
			report.Measurements[i].ID = 0
		}
		if err := s.Reports.Insert(ctx, tx, &report); err != nil {
			return err
		}
		return s.Orders.SetStatus(ctx, tx, orderID, models.OrderStatusOpen)
	})
	if err != nil {
		return models.Order{}, models.MeasurementReport{}, err
	}
	s.Log.Info("measurement report opened", zap.Int("order_id", orderID))
	return s.reload(ctx, orderID)
}

// Update rewrites an open report. Submitted measurements with an id replace
// the stored one, those without are added and stored measurements left out
// of the submission are removed.
func (s *Service) Update(ctx context.Context, orderID int, sub forms.ReportSubmission) (models.Order, models.MeasurementReport, error) {
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		current, err := s.Orders.GetWith(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if current.Status == models.OrderStatusDone {
			return &StateError{OrderID: orderID, Status: current.Status, Err: ErrReportClosed}
		}
		stored, err := s.Reports.GetByOrder(ctx, tx, orderID)
		if errors.Is(err, store.ErrNotFound) {
			return &StateError{OrderID: orderID, Status: current.Status, Err: ErrNoReport}
		}
		if err != nil {
			return err
		}

		order, report, err := sub.Clean()
		if err != nil {
			return err
		}
		existing, err := s.Reports.MeasurementIDs(ctx, tx, stored.ID)
		if err != nil {
			return err
		}
		if err := checkOwnership(report.Measurements, existing); err != nil {
			return err
		}

		order.ID = orderID
		if err := s.Orders.UpdateWith(ctx, tx, &order); err != nil {
			return err
		}
		report.ID = stored.ID
		if err := s.Reports.UpdateHeader(ctx, tx, report); err != nil {
			return err
		}
		return s.sync(ctx, tx, stored.ID, existing, report.Measurements)
	})
	if err != nil {
		return models.Order{}, models.MeasurementReport{}, err
	}
	s.Log.Info("measurement report updated", zap.Int("order_id", orderID))
	return s.reload(ctx, orderID)
}

// Close marks the order Done. A closed report cannot be edited again.
func (s *Service) Close(ctx context.Context, orderID int) (models.Order, error) {
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		current, err := s.Orders.GetWith(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if current.Status == models.OrderStatusDone {
			return &StateError{OrderID: orderID, Status: current.Status, Err: ErrReportClosed}
		}
		_, err = s.Reports.GetByOrder(ctx, tx, orderID)
		if errors.Is(err, store.ErrNotFound) {
			return &StateError{OrderID: orderID, Status: current.Status, Err: ErrNoReport}
		}
		if err != nil {
			return err
		}
		return s.Orders.SetStatus(ctx, tx, orderID, models.OrderStatusDone)
	})
	if err != nil {
		return models.Order{}, err
	}
	s.Log.Info("measurement report closed", zap.Int("order_id", orderID))
	return s.Orders.Get(ctx, orderID)
}

func (s *Service) reload(ctx context.Context, orderID int) (models.Order, models.MeasurementReport, error) {
	order, report, err := s.Get(ctx, orderID)
	if err != nil {
		return order, models.MeasurementReport{}, err
	}
	if report == nil {
		return order, models.MeasurementReport{}, store.ErrNotFound
	}
	return order, *report, nil
}

// checkOwnership rejects submitted ids that are not measurements of the
// report being edited.
func checkOwnership(ms []models.Measurement, existing map[int]bool) error {
	fe := &forms.FormSetErrors{}
	for i, m := range ms {
		if m.ID != 0 && !existing[m.ID] {
			fe.AddField(forms.MeasurementFormName(i), "id", "does not belong to this report")
		}
	}
	if fe.HasErrors() {
		return fe
	}
	return nil
}

// sync applies the submitted measurements to the stored ones. Pallet
// numbers are parked first so kept rows may trade numbers.
func (s *Service) sync(ctx context.Context, q database.Querier, reportID int, existing map[int]bool, submitted []models.Measurement) error {
	keep := make(map[int]bool, len(submitted))
	for _, m := range submitted {
		if m.ID != 0 {
			keep[m.ID] = true
		}
	}
	for id := range existing {
		if !keep[id] {
			if err := s.Reports.DeleteMeasurement(ctx, q, reportID, id); err != nil {
				return err
			}
		}
	}
	if err := s.Reports.ParkPalletNumbers(ctx, q, reportID); err != nil {
		return err
	}
	for _, m := range submitted {
		if m.ID != 0 {
			if err := s.Reports.UpdateMeasurement(ctx, q, reportID, m); err != nil {
				return err
			}
		}
	}
	for i := range submitted {
		if submitted[i].ID == 0 {
			if err := s.Reports.InsertMeasurement(ctx, q, reportID, &submitted[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
