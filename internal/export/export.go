// Package export renders orders and measurement reports as xlsx workbooks.
package export

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"qcr/internal/models"
)

// ContentType is the MIME type of an xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

type sheet struct {
	f      *excelize.File
	name   string
	bold   int
	row    int
	widths int
}

func newWorkbook(name string) (*sheet, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(name)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if name != defaultSheet {
		f.DeleteSheet(defaultSheet)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	return &sheet{f: f, name: name, bold: bold, row: 1}, nil
}

// line writes values into the next row. A header row is styled bold grey.
func (s *sheet) line(header bool, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return err
		}
		if err := s.f.SetCellValue(s.name, cell, v); err != nil {
			return err
		}
		if header {
			if err := s.f.SetCellStyle(s.name, cell, cell, s.bold); err != nil {
				return err
			}
		}
	}
	if len(values) > s.widths {
		s.widths = len(values)
	}
	s.row++
	return nil
}

func (s *sheet) finish() (*excelize.File, error) {
	if s.widths > 0 {
		last, err := excelize.ColumnNumberToName(s.widths)
		if err != nil {
			return nil, err
		}
		if err := s.f.SetColWidth(s.name, "A", last, 15); err != nil {
			return nil, err
		}
	}
	return s.f, nil
}

// Table builds a one-sheet workbook with a header row followed by rows.
func Table(sheetName string, headers []string, rows [][]string) (*excelize.File, error) {
	s, err := newWorkbook(sheetName)
	if err != nil {
		return nil, err
	}
	if err := s.line(true, strs(headers)...); err != nil {
		s.f.Close()
		return nil, err
	}
	for _, r := range rows {
		if err := s.line(false, strs(r)...); err != nil {
			s.f.Close()
			return nil, err
		}
	}
	return s.finish()
}

var orderHeaders = []string{
	"Order SAP ID", "Client", "Client SAP ID", "Product SAP ID", "Description",
	"Date of production", "Status", "Quantity",
}

// Orders lays out an order list the way the list view shows it.
func Orders(orders []models.Order) (*excelize.File, error) {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			o.SapID, o.ClientName, o.ClientSapID, o.ProductSapID, o.ProductDescription,
			o.DateOfProduction, o.Status, optText(o.Quantity),
		})
	}
	return Table("Orders", orderHeaders, rows)
}

var measurementHeaders = []string{
	"Pallet",
	"ID top", "ID target", "ID bottom",
	"OD top", "OD target", "OD bottom",
	"Length top", "Length target", "Length bottom",
	"Flat crush", "Moisture", "Weight", "Remarks",
}

// Report writes the order header block, the report header and one row per
// pallet measurement.
func Report(o models.Order, r models.MeasurementReport) (*excelize.File, error) {
	s, err := newWorkbook("Report")
	if err != nil {
		return nil, err
	}

	header := [][]any{
		{"Order SAP ID", o.SapID},
		{"Client", o.ClientName, o.ClientSapID},
		{"Product", o.ProductDescription, o.ProductSapID},
		{"Date of production", o.DateOfProduction},
		{"Quantity", optInt(o.Quantity)},
		{"Internal diameter reference", optDec(o.InternalDiameterReference)},
		{"External diameter reference", optDec(o.ExternalDiameterReference)},
		{"Length", optDec(o.Length)},
		{"Status", o.Status},
		{"Author", r.Author},
		{"Date of control", r.DateOfControl},
	}
	for _, h := range header {
		if err := s.line(false, h...); err != nil {
			s.f.Close()
			return nil, err
		}
	}
	s.row++

	if err := s.line(true, strs(measurementHeaders)...); err != nil {
		s.f.Close()
		return nil, err
	}
	for _, m := range r.Measurements {
		err := s.line(false,
			m.PalletNumber,
			m.InternalDiameter.ToleranceTop.String(), m.InternalDiameter.Target.String(), m.InternalDiameter.ToleranceBottom.String(),
			m.ExternalDiameter.ToleranceTop.String(), m.ExternalDiameter.Target.String(), m.ExternalDiameter.ToleranceBottom.String(),
			m.Length.ToleranceTop.String(), m.Length.Target.String(), m.Length.ToleranceBottom.String(),
			optInt(m.FlatCrushResistanceTarget), optInt(m.MoistureContentTarget), optInt(m.Weight),
			m.Remarks,
		)
		if err != nil {
			s.f.Close()
			return nil, err
		}
	}
	return s.finish()
}

// Write streams f as an attachment named filename and closes it.
func Write(w http.ResponseWriter, f *excelize.File, filename string) error {
	defer f.Close()
	if !strings.HasSuffix(filename, ".xlsx") {
		filename += ".xlsx"
	}
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return f.Write(w)
}

func strs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func optInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func optText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optDec(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
