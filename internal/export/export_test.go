package export

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"qcr/internal/models"
)

func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, Write(w, f, "out"))
	assert.Equal(t, ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=out.xlsx", w.Header().Get("Content-Disposition"))

	got, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { got.Close() })
	return got
}

func TestOrders(t *testing.T) {
	f, err := Orders([]models.Order{
		{SapID: "00012345", ClientName: "Acme", ClientSapID: "0000001", ProductSapID: "0000002",
			ProductDescription: "Tube 76", DateOfProduction: "2024-03-01", Status: "Open", Quantity: ptr(400)},
	})
	require.NoError(t, err)

	got := reopen(t, f)
	assert.Equal(t, []string{"Orders"}, got.GetSheetList())

	rows, err := got.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Order SAP ID", rows[0][0])
	assert.Equal(t, []string{"00012345", "Acme", "0000001", "0000002", "Tube 76", "2024-03-01", "Open", "400"}, rows[1])
}

func TestReport(t *testing.T) {
	weight := 512
	o := models.Order{SapID: "00012345", ClientName: "Acme", Quantity: ptr(10), Length: decimal.NewNullDecimal(decimal.RequireFromString("1000.5"))}
	r := models.MeasurementReport{
		Author:        "J. Kowalski",
		DateOfControl: "2024-03-02",
		Measurements: []models.Measurement{
			{PalletNumber: 1, Weight: &weight, Remarks: "ok",
				Length: models.Triplet{ToleranceTop: decimal.NewFromInt(1001), Target: decimal.NewFromInt(1000), ToleranceBottom: decimal.NewFromInt(999)}},
			{PalletNumber: 2},
		},
	}

	f, err := Report(o, r)
	require.NoError(t, err)
	got := reopen(t, f)

	rows, err := got.GetRows("Report")
	require.NoError(t, err)
	assert.Equal(t, []string{"Order SAP ID", "00012345"}, rows[0])
	assert.Equal(t, []string{"Author", "J. Kowalski"}, rows[9])

	// 11 header lines, a blank row, the table header, then pallets.
	require.Len(t, rows, 15)
	assert.Equal(t, "Pallet", rows[12][0])
	assert.Equal(t, "1", rows[13][0])
	assert.Equal(t, "1001", rows[13][7])
	assert.Equal(t, "512", rows[13][12])
	assert.Equal(t, "ok", rows[13][13])
	assert.Equal(t, "2", rows[14][0])
}

func TestTableWideHeader(t *testing.T) {
	headers := make([]string, 30)
	for i := range headers {
		headers[i] = "h"
	}
	f, err := Table("Wide", headers, nil)
	require.NoError(t, err)

	got := reopen(t, f)
	rows, err := got.GetRows("Wide")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 30)
}

func ptr(n int) *int { return &n }
