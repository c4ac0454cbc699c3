package store

import (
	"context"
	"fmt"

	"qcr/internal/database"
	"qcr/internal/models"
)

const measurementColumns = `pallet_number,
	internal_diameter_tolerance_top, internal_diameter_target, internal_diameter_tolerance_bottom,
	external_diameter_tolerance_top, external_diameter_target, external_diameter_tolerance_bottom,
	length_tolerance_top, length_target, length_tolerance_bottom,
	flat_crush_resistance_target, moisture_content_target, weight, remarks`

func measurementArgs(m models.Measurement) []any {
	return []any{
		m.PalletNumber,
		m.InternalDiameter.ToleranceTop, m.InternalDiameter.Target, m.InternalDiameter.ToleranceBottom,
		m.ExternalDiameter.ToleranceTop, m.ExternalDiameter.Target, m.ExternalDiameter.ToleranceBottom,
		m.Length.ToleranceTop, m.Length.Target, m.Length.ToleranceBottom,
		m.FlatCrushResistanceTarget, m.MoistureContentTarget, m.Weight, m.Remarks,
	}
}

// ReportStore persists measurement reports and their measurements. Every
// method takes a Querier so the report workflow can run them in one
// transaction.
type ReportStore struct{}

func NewReportStore() *ReportStore {
	return &ReportStore{}
}

// GetByOrder returns the report of an order with its measurements ordered
// by pallet number.
func (s *ReportStore) GetByOrder(ctx context.Context, q database.Querier, orderID int) (models.MeasurementReport, error) {
	var r models.MeasurementReport
	err := q.QueryRowContext(ctx, "SELECT id, order_id, author, date_of_control FROM measurement_reports WHERE order_id = ?", orderID).
		Scan(&r.ID, &r.OrderID, &r.Author, &r.DateOfControl)
	if err != nil {
		return r, notFound(err)
	}
	r.Measurements, err = s.measurements(ctx, q, r.ID)
	return r, err
}

func (s *ReportStore) measurements(ctx context.Context, q database.Querier, reportID int) ([]models.Measurement, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, report_id, "+measurementColumns+
		" FROM measurements WHERE report_id = ? ORDER BY pallet_number, id", reportID)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()

	items := []models.Measurement{}
	for rows.Next() {
		var m models.Measurement
		err := rows.Scan(&m.ID, &m.ReportID, &m.PalletNumber,
			&m.InternalDiameter.ToleranceTop, &m.InternalDiameter.Target, &m.InternalDiameter.ToleranceBottom,
			&m.ExternalDiameter.ToleranceTop, &m.ExternalDiameter.Target, &m.ExternalDiameter.ToleranceBottom,
			&m.Length.ToleranceTop, &m.Length.Target, &m.Length.ToleranceBottom,
			&m.FlatCrushResistanceTarget, &m.MoistureContentTarget, &m.Weight, &m.Remarks)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// Insert writes the report header and all of its measurements.
func (s *ReportStore) Insert(ctx context.Context, q database.Querier, r *models.MeasurementReport) error {
	res, err := q.ExecContext(ctx, "INSERT INTO measurement_reports (order_id, author, date_of_control) VALUES (?, ?, ?)",
		r.OrderID, r.Author, r.DateOfControl)
	if database.IsUniqueViolation(err) {
		return &DuplicateError{Field: "order_id", Value: fmt.Sprint(r.OrderID)}
	}
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	id, _ := res.LastInsertId()
	r.ID = int(id)

	for i := range r.Measurements {
		if err := s.InsertMeasurement(ctx, q, r.ID, &r.Measurements[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReportStore) UpdateHeader(ctx context.Context, q database.Querier, r models.MeasurementReport) error {
	_, err := q.ExecContext(ctx, "UPDATE measurement_reports SET author = ?, date_of_control = ? WHERE id = ?",
		r.Author, r.DateOfControl, r.ID)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	return nil
}

// MeasurementIDs returns the set of measurement ids stored for a report.
func (s *ReportStore) MeasurementIDs(ctx context.Context, q database.Querier, reportID int) (map[int]bool, error) {
	rows, err := q.QueryContext(ctx, "SELECT id FROM measurements WHERE report_id = ?", reportID)
	if err != nil {
		return nil, fmt.Errorf("list measurement ids: %w", err)
	}
	defer rows.Close()

	ids := map[int]bool{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (s *ReportStore) InsertMeasurement(ctx context.Context, q database.Querier, reportID int, m *models.Measurement) error {
	args := append([]any{reportID}, measurementArgs(*m)...)
	res, err := q.ExecContext(ctx, "INSERT INTO measurements (report_id, "+measurementColumns+
		") VALUES (?, "+placeholders(len(args)-1)+")", args...)
	if database.IsUniqueViolation(err) {
		return &DuplicateError{Field: "pallet_number", Value: fmt.Sprint(m.PalletNumber)}
	}
	if err != nil {
		return fmt.Errorf("insert measurement: %w", err)
	}
	id, _ := res.LastInsertId()
	m.ID = int(id)
	m.ReportID = reportID
	return nil
}

func (s *ReportStore) UpdateMeasurement(ctx context.Context, q database.Querier, reportID int, m models.Measurement) error {
	_, err := q.ExecContext(ctx, `UPDATE measurements SET pallet_number = ?,
		internal_diameter_tolerance_top = ?, internal_diameter_target = ?, internal_diameter_tolerance_bottom = ?,
		external_diameter_tolerance_top = ?, external_diameter_target = ?, external_diameter_tolerance_bottom = ?,
		length_tolerance_top = ?, length_target = ?, length_tolerance_bottom = ?,
		flat_crush_resistance_target = ?, moisture_content_target = ?, weight = ?, remarks = ?
		WHERE id = ? AND report_id = ?`, append(measurementArgs(m), m.ID, reportID)...)
	if database.IsUniqueViolation(err) {
		return &DuplicateError{Field: "pallet_number", Value: fmt.Sprint(m.PalletNumber)}
	}
	if err != nil {
		return fmt.Errorf("update measurement: %w", err)
	}
	return nil
}

func (s *ReportStore) DeleteMeasurement(ctx context.Context, q database.Querier, reportID, id int) error {
	_, err := q.ExecContext(ctx, "DELETE FROM measurements WHERE id = ? AND report_id = ?", id, reportID)
	if err != nil {
		return fmt.Errorf("delete measurement: %w", err)
	}
	return nil
}

// ParkPalletNumbers moves every pallet number of a report out of the
// positive range so kept rows can swap numbers without tripping the unique
// constraint mid-update.
func (s *ReportStore) ParkPalletNumbers(ctx context.Context, q database.Querier, reportID int) error {
	_, err := q.ExecContext(ctx, "UPDATE measurements SET pallet_number = -id WHERE report_id = ?", reportID)
	if err != nil {
		return fmt.Errorf("park pallet numbers: %w", err)
	}
	return nil
}
