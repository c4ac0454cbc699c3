package forms

import (
	"fmt"
	"strconv"

	"qcr/internal/models"
)

type OrderForm struct {
	SapID                     Value `json:"order_sap_id" yaml:"order_sap_id"`
	ClientSapID               Value `json:"client_sap_id" yaml:"client_sap_id"`
	ProductSapID              Value `json:"product_sap_id" yaml:"product_sap_id"`
	DateOfProduction          Value `json:"date_of_production" yaml:"date_of_production"`
	Quantity                  Value `json:"quantity" yaml:"quantity"`
	InternalDiameterReference Value `json:"internal_diameter_reference" yaml:"internal_diameter_reference"`
	ExternalDiameterReference Value `json:"external_diameter_reference" yaml:"external_diameter_reference"`
	Length                    Value `json:"length" yaml:"length"`
}

// Clean validates the order fields. Client and product are returned by SAP
// id only; resolving them to records is left to the store. The batch SAP id
// may stay empty unless requireSapID is set. Quantity and the tube sizes are
// optional and stay null when empty.
func (f OrderForm) Clean(requireSapID bool) (models.Order, error) {
	c := newCleaner()
	o := models.Order{
		SapID:                     c.sapID("order_sap_id", f.SapID, models.OrderSapDigits, requireSapID),
		ClientSapID:               c.sapID("client_sap_id", f.ClientSapID, models.ClientSapDigits, true),
		ProductSapID:              c.sapID("product_sap_id", f.ProductSapID, models.ProductSapDigits, true),
		DateOfProduction:          c.date("date_of_production", f.DateOfProduction, Today()),
		Quantity:                  c.optInt("quantity", f.Quantity),
		InternalDiameterReference: c.optDec("internal_diameter_reference", f.InternalDiameterReference),
		ExternalDiameterReference: c.optDec("external_diameter_reference", f.ExternalDiameterReference),
		Length:                    c.optDec("length", f.Length),
	}
	if o.Quantity != nil && *o.Quantity < 0 {
		c.ve.Add("quantity", "must be non-negative")
	}
	return o, c.err()
}

type ReportForm struct {
	Author        Value `json:"author"`
	DateOfControl Value `json:"date_of_control"`
}

func (f ReportForm) Clean() (models.MeasurementReport, error) {
	c := newCleaner()
	r := models.MeasurementReport{
		Author:        c.text("author", f.Author, true, 100),
		DateOfControl: c.date("date_of_control", f.DateOfControl, Today()),
	}
	return r, c.err()
}

type MeasurementForm struct {
	ID                              Value `json:"id"`
	PalletNumber                    Value `json:"pallet_number"`
	InternalDiameterToleranceTop    Value `json:"internal_diameter_tolerance_top"`
	InternalDiameterTarget          Value `json:"internal_diameter_target"`
	InternalDiameterToleranceBottom Value `json:"internal_diameter_tolerance_bottom"`
	ExternalDiameterToleranceTop    Value `json:"external_diameter_tolerance_top"`
	ExternalDiameterTarget          Value `json:"external_diameter_target"`
	ExternalDiameterToleranceBottom Value `json:"external_diameter_tolerance_bottom"`
	LengthToleranceTop              Value `json:"length_tolerance_top"`
	LengthTarget                    Value `json:"length_target"`
	LengthToleranceBottom           Value `json:"length_tolerance_bottom"`
	FlatCrushResistanceTarget       Value `json:"flat_crush_resistance_target"`
	MoistureContentTarget           Value `json:"moisture_content_target"`
	Weight                          Value `json:"weight"`
	Remarks                         Value `json:"remarks"`
}

func (f MeasurementForm) Clean() (models.Measurement, error) {
	c := newCleaner()
	m := models.Measurement{
		PalletNumber: c.integer("pallet_number", f.PalletNumber, true),
		InternalDiameter: models.Triplet{
			ToleranceTop:    c.dec("internal_diameter_tolerance_top", f.InternalDiameterToleranceTop, true),
			Target:          c.dec("internal_diameter_target", f.InternalDiameterTarget, true),
			ToleranceBottom: c.dec("internal_diameter_tolerance_bottom", f.InternalDiameterToleranceBottom, true),
		},
		ExternalDiameter: models.Triplet{
			ToleranceTop:    c.dec("external_diameter_tolerance_top", f.ExternalDiameterToleranceTop, true),
			Target:          c.dec("external_diameter_target", f.ExternalDiameterTarget, true),
			ToleranceBottom: c.dec("external_diameter_tolerance_bottom", f.ExternalDiameterToleranceBottom, true),
		},
		Length: models.Triplet{
			ToleranceTop:    c.dec("length_tolerance_top", f.LengthToleranceTop, true),
			Target:          c.dec("length_target", f.LengthTarget, true),
			ToleranceBottom: c.dec("length_tolerance_bottom", f.LengthToleranceBottom, true),
		},
		FlatCrushResistanceTarget: c.optInt("flat_crush_resistance_target", f.FlatCrushResistanceTarget),
		MoistureContentTarget:     c.optInt("moisture_content_target", f.MoistureContentTarget),
		Weight:                    c.optInt("weight", f.Weight),
		Remarks:                   c.text("remarks", f.Remarks, false, 0),
	}
	if f.PalletNumber != "" && !c.ve.Has("pallet_number") && m.PalletNumber < 1 {
		c.ve.Add("pallet_number", "must be a positive integer")
	}
	if f.ID != "" {
		id, err := strconv.Atoi(f.ID.String())
		if err != nil || id < 1 {
			c.ve.Add("id", "must be a positive integer")
		}
		m.ID = id
	}
	return m, c.err()
}

// ReportSubmission is the order, report and pallet measurements edited
// together on the measurement report page.
type ReportSubmission struct {
	Order        OrderForm         `json:"order"`
	Report       ReportForm        `json:"report"`
	Measurements []MeasurementForm `json:"measurements"`
}

// MeasurementFormName is the key of the i-th measurement form in
// FormSetErrors.
func MeasurementFormName(i int) string {
	return fmt.Sprintf("measurements.%d", i)
}

// Clean validates every form of the submission. The returned report carries
// the cleaned measurements in submission order. Pallet numbers must be
// distinct; a clash is reported on the first measurement form.
func (s ReportSubmission) Clean() (models.Order, models.MeasurementReport, error) {
	fe := &FormSetErrors{}

	order, err := s.Order.Clean(true)
	fe.Add("order", err)
	report, err := s.Report.Clean()
	fe.Add("report", err)

	if len(s.Measurements) == 0 {
		fe.AddField("measurements", "measurements", "at least one measurement is required")
	}

	pallets := make(map[int]bool, len(s.Measurements))
	ids := make(map[int]bool, len(s.Measurements))
	duplicate := false
	for i, mf := range s.Measurements {
		m, err := mf.Clean()
		if err != nil {
			fe.Add(MeasurementFormName(i), err)
		} else {
			if pallets[m.PalletNumber] {
				duplicate = true
			}
			pallets[m.PalletNumber] = true
		}
		if m.ID != 0 {
			if ids[m.ID] {
				fe.AddField(MeasurementFormName(i), "id", "submitted more than once")
			}
			ids[m.ID] = true
		}
		report.Measurements = append(report.Measurements, m)
	}
	if duplicate {
		fe.AddField(MeasurementFormName(0), "pallet_number", "pallet numbers must be unique within a report")
	}

	return order, report, fe.err()
}
