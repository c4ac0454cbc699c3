package forms_test

import (
	"encoding/json"
	"errors"
	"testing"

	"qcr/internal/forms"
	"qcr/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueAcceptsStringsAndNumbers(t *testing.T) {
	t.Parallel()
	var f forms.ClientForm
	require.NoError(t, json.Unmarshal([]byte(`{"client_sap_id": 1234567, "client_name": "  Acme "}`), &f))
	assert.Equal(t, forms.Value("1234567"), f.SapID)
	assert.Equal(t, forms.Value("Acme"), f.ClientName)

	require.NoError(t, json.Unmarshal([]byte(`{"client_sap_id": "0000042", "client_name": null}`), &f))
	assert.Equal(t, forms.Value("0000042"), f.SapID)
	assert.Equal(t, forms.Value(""), f.ClientName)

	assert.Error(t, json.Unmarshal([]byte(`{"client_sap_id": {"x": 1}}`), &f))
}

func TestValueFromYAML(t *testing.T) {
	t.Parallel()
	var f forms.ProductForm
	require.NoError(t, yaml.Unmarshal([]byte("product_sap_id: \"0000007\"\nindex: 12\ndescription: ~\n"), &f))
	assert.Equal(t, forms.Value("0000007"), f.SapID)
	assert.Equal(t, forms.Value("12"), f.Index)
	assert.Equal(t, forms.Value(""), f.Description)
}

func TestClientFormClean(t *testing.T) {
	t.Parallel()

	c, err := forms.ClientForm{SapID: "1234567", ClientName: "Acme"}.Clean()
	require.NoError(t, err)
	assert.Equal(t, "1234567", c.SapID)

	_, err = forms.ClientForm{SapID: "123", ClientName: ""}.Clean()
	var ve *validation.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("client_sap_id"))
	assert.True(t, ve.Has("client_name"))
}

func TestProductWithSpecFormClean(t *testing.T) {
	t.Parallel()

	f := forms.ProductWithSpecForm{
		Product: forms.ProductForm{SapID: "7654321", Index: "T-76", Description: "Core 76mm"},
		Specification: forms.SpecificationForm{
			InternalDiameterTarget:    "76.2",
			InternalDiameterTop:       "0.3",
			ExternalDiameterTarget:    "82",
			WallThicknessTarget:       "3",
			LengthTarget:              "1000",
			FlatCrushResistanceTarget: "1200",
			MoistureContentTarget:     "8",
			CoresPackedIn:             "Vertical",
		},
	}
	p, err := f.Clean()
	require.NoError(t, err)
	require.NotNil(t, p.Specification)
	assert.Equal(t, "76.2", p.Specification.InternalDiameter.Target.String())
	assert.Equal(t, "N", p.Specification.PalletWrappedWithStretchFilm)
	assert.Equal(t, "Vertical", p.Specification.CoresPackedIn)

	f.Product.SapID = ""
	f.Specification.CoresPackedIn = "Sideways"
	_, err = f.Clean()
	var fe *forms.FormSetErrors
	require.True(t, errors.As(err, &fe))
	assert.True(t, fe.Get("product").Has("product_sap_id"))
	assert.True(t, fe.Get("specification").Has("cores_packed_in"))
}

func TestOrderFormSapIDRequirement(t *testing.T) {
	today := forms.Today
	forms.Today = func() string { return "2024-05-01" }
	t.Cleanup(func() { forms.Today = today })

	f := forms.OrderForm{
		ClientSapID: "1234567", ProductSapID: "7654321", Quantity: "100",
		InternalDiameterReference: "76", ExternalDiameterReference: "82", Length: "1000",
	}
	o, err := f.Clean(false)
	require.NoError(t, err)
	assert.Equal(t, "", o.SapID)
	assert.Equal(t, "2024-05-01", o.DateOfProduction)

	_, err = f.Clean(true)
	var ve *validation.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("order_sap_id"))

	f.SapID = "1234567"
	_, err = f.Clean(false)
	require.Error(t, err, "seven digits is not an order id")
}

func TestOrderFormSizingIsOptional(t *testing.T) {
	t.Parallel()
	f := forms.OrderForm{ClientSapID: "1234567", ProductSapID: "7654321", DateOfProduction: "2024-01-02"}
	o, err := f.Clean(false)
	require.NoError(t, err)
	assert.Nil(t, o.Quantity)
	assert.False(t, o.InternalDiameterReference.Valid)
	assert.False(t, o.ExternalDiameterReference.Valid)
	assert.False(t, o.Length.Valid)

	f.Quantity = "-1"
	f.Length = "abc"
	_, err = f.Clean(false)
	var ve *validation.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("quantity"))
	assert.True(t, ve.Has("length"))
}

func measurement(pallet string) forms.MeasurementForm {
	return forms.MeasurementForm{
		PalletNumber:                    forms.Value(pallet),
		InternalDiameterToleranceTop:    "76.5",
		InternalDiameterTarget:          "76.2",
		InternalDiameterToleranceBottom: "76.0",
		ExternalDiameterToleranceTop:    "82.5",
		ExternalDiameterTarget:          "82.2",
		ExternalDiameterToleranceBottom: "82.0",
		LengthToleranceTop:              "1001",
		LengthTarget:                    "1000",
		LengthToleranceBottom:           "999",
	}
}

func submission(pallets ...string) forms.ReportSubmission {
	s := forms.ReportSubmission{
		Order: forms.OrderForm{
			SapID: "12345678", ClientSapID: "1234567", ProductSapID: "7654321", Quantity: "10",
			InternalDiameterReference: "76", ExternalDiameterReference: "82", Length: "1000",
		},
		Report: forms.ReportForm{Author: "J. Smith", DateOfControl: "2024-05-02"},
	}
	for _, p := range pallets {
		s.Measurements = append(s.Measurements, measurement(p))
	}
	return s
}

func TestReportSubmissionClean(t *testing.T) {
	t.Parallel()
	order, report, err := submission("1", "2", "3").Clean()
	require.NoError(t, err)
	assert.Equal(t, "12345678", order.SapID)
	require.Len(t, report.Measurements, 3)
	assert.Equal(t, 3, report.Measurements[2].PalletNumber)
	assert.Nil(t, report.Measurements[0].Weight)
}

func TestReportSubmissionDuplicatePallets(t *testing.T) {
	t.Parallel()
	_, _, err := submission("1", "1").Clean()
	var fe *forms.FormSetErrors
	require.True(t, errors.As(err, &fe))
	first := fe.Get(forms.MeasurementFormName(0))
	require.NotNil(t, first)
	assert.True(t, first.Has("pallet_number"))
	assert.Nil(t, fe.Get(forms.MeasurementFormName(1)))
}

func TestReportSubmissionRequiresMeasurements(t *testing.T) {
	t.Parallel()
	_, _, err := submission().Clean()
	var fe *forms.FormSetErrors
	require.True(t, errors.As(err, &fe))
	assert.NotNil(t, fe.Get("measurements"))
}

func TestReportSubmissionCollectsAllForms(t *testing.T) {
	t.Parallel()
	s := submission("1", "x")
	s.Order.SapID = ""
	s.Report.Author = ""
	_, _, err := s.Clean()
	var fe *forms.FormSetErrors
	require.True(t, errors.As(err, &fe))
	assert.True(t, fe.Get("order").Has("order_sap_id"))
	assert.True(t, fe.Get("report").Has("author"))
	assert.True(t, fe.Get(forms.MeasurementFormName(1)).Has("pallet_number"))
	assert.Contains(t, fe.Error(), "report.author: is required")
}

func TestMeasurementFormID(t *testing.T) {
	t.Parallel()
	m := measurement("4")
	m.ID = "17"
	m.Weight = "250"
	got, err := m.Clean()
	require.NoError(t, err)
	assert.Equal(t, 17, got.ID)
	require.NotNil(t, got.Weight)
	assert.Equal(t, 250, *got.Weight)

	m.ID = "abc"
	_, err = m.Clean()
	assert.Error(t, err)
}
