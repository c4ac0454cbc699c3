package forms

import (
	"qcr/internal/models"
	"qcr/internal/validation"
)

type ClientForm struct {
	SapID      Value `json:"client_sap_id" yaml:"client_sap_id"`
	ClientName Value `json:"client_name" yaml:"client_name"`
}

func (f ClientForm) Clean() (models.Client, error) {
	c := newCleaner()
	client := models.Client{
		SapID:      c.sapID("client_sap_id", f.SapID, models.ClientSapDigits, true),
		ClientName: c.text("client_name", f.ClientName, true, 255),
	}
	return client, c.err()
}

type ProductForm struct {
	SapID       Value `json:"product_sap_id" yaml:"product_sap_id"`
	Index       Value `json:"index" yaml:"index"`
	Description Value `json:"description" yaml:"description"`
}

func (f ProductForm) Clean() (models.Product, error) {
	c := newCleaner()
	p := models.Product{
		SapID:       c.sapID("product_sap_id", f.SapID, models.ProductSapDigits, true),
		Index:       c.text("index", f.Index, true, 30),
		Description: c.text("description", f.Description, true, 100),
	}
	return p, c.err()
}

type SpecificationForm struct {
	InternalDiameterTarget        Value `json:"internal_diameter_target" yaml:"internal_diameter_target"`
	InternalDiameterTop           Value `json:"internal_diameter_top" yaml:"internal_diameter_top"`
	InternalDiameterBottom        Value `json:"internal_diameter_bottom" yaml:"internal_diameter_bottom"`
	ExternalDiameterTarget        Value `json:"external_diameter_target" yaml:"external_diameter_target"`
	ExternalDiameterTop           Value `json:"external_diameter_top" yaml:"external_diameter_top"`
	ExternalDiameterBottom        Value `json:"external_diameter_bottom" yaml:"external_diameter_bottom"`
	WallThicknessTarget           Value `json:"wall_thickness_target" yaml:"wall_thickness_target"`
	WallThicknessTop              Value `json:"wall_thickness_top" yaml:"wall_thickness_top"`
	WallThicknessBottom           Value `json:"wall_thickness_bottom" yaml:"wall_thickness_bottom"`
	LengthTarget                  Value `json:"length_target" yaml:"length_target"`
	LengthTop                     Value `json:"length_top" yaml:"length_top"`
	LengthBottom                  Value `json:"length_bottom" yaml:"length_bottom"`
	FlatCrushResistanceTarget     Value `json:"flat_crush_resistance_target" yaml:"flat_crush_resistance_target"`
	FlatCrushResistanceTop        Value `json:"flat_crush_resistance_top" yaml:"flat_crush_resistance_top"`
	FlatCrushResistanceBottom     Value `json:"flat_crush_resistance_bottom" yaml:"flat_crush_resistance_bottom"`
	MoistureContentTarget         Value `json:"moisture_content_target" yaml:"moisture_content_target"`
	MoistureContentTop            Value `json:"moisture_content_top" yaml:"moisture_content_top"`
	MoistureContentBottom         Value `json:"moisture_content_bottom" yaml:"moisture_content_bottom"`
	Colour                        Value `json:"colour" yaml:"colour"`
	Finish                        Value `json:"finish" yaml:"finish"`
	MaximumHeightOfPallet         Value `json:"maximum_height_of_pallet" yaml:"maximum_height_of_pallet"`
	QuantityOnThePallet           Value `json:"quantity_on_the_pallet" yaml:"quantity_on_the_pallet"`
	PalletProtectedWithPaperEdges Value `json:"pallet_protected_with_paper_edges" yaml:"pallet_protected_with_paper_edges"`
	PalletWrappedWithStretchFilm  Value `json:"pallet_wrapped_with_stretch_film" yaml:"pallet_wrapped_with_stretch_film"`
	CoresPackedIn                 Value `json:"cores_packed_in" yaml:"cores_packed_in"`
	Remarks                       Value `json:"remarks" yaml:"remarks"`
}

func (f SpecificationForm) Clean() (models.Specification, error) {
	c := newCleaner()
	s := models.Specification{
		InternalDiameter:              bandOf(c, "internal_diameter", f.InternalDiameterTarget, f.InternalDiameterTop, f.InternalDiameterBottom),
		ExternalDiameter:              bandOf(c, "external_diameter", f.ExternalDiameterTarget, f.ExternalDiameterTop, f.ExternalDiameterBottom),
		WallThickness:                 bandOf(c, "wall_thickness", f.WallThicknessTarget, f.WallThicknessTop, f.WallThicknessBottom),
		Length:                        bandOf(c, "length", f.LengthTarget, f.LengthTop, f.LengthBottom),
		FlatCrushResistance:           intBandOf(c, "flat_crush_resistance", f.FlatCrushResistanceTarget, f.FlatCrushResistanceTop, f.FlatCrushResistanceBottom),
		MoistureContent:               intBandOf(c, "moisture_content", f.MoistureContentTarget, f.MoistureContentTop, f.MoistureContentBottom),
		Colour:                        c.text("colour", f.Colour, false, 255),
		Finish:                        c.text("finish", f.Finish, false, 255),
		MaximumHeightOfPallet:         c.dec("maximum_height_of_pallet", f.MaximumHeightOfPallet, false),
		QuantityOnThePallet:           c.integer("quantity_on_the_pallet", f.QuantityOnThePallet, false),
		PalletProtectedWithPaperEdges: c.choice("pallet_protected_with_paper_edges", f.PalletProtectedWithPaperEdges, validation.ValidYesNo, "N"),
		PalletWrappedWithStretchFilm:  c.choice("pallet_wrapped_with_stretch_film", f.PalletWrappedWithStretchFilm, validation.ValidYesNo, "N"),
		CoresPackedIn:                 c.choice("cores_packed_in", f.CoresPackedIn, validation.ValidCoresPackedIn, "Horizontal"),
		Remarks:                       c.text("remarks", f.Remarks, false, 0),
	}
	return s, c.err()
}

// ProductWithSpecForm saves a product and its specification as one unit.
type ProductWithSpecForm struct {
	Product       ProductForm       `json:"product" yaml:"product"`
	Specification SpecificationForm `json:"specification" yaml:"specification"`
}

func (f ProductWithSpecForm) Clean() (models.Product, error) {
	fe := &FormSetErrors{}
	p, err := f.Product.Clean()
	fe.Add("product", err)
	spec, err := f.Specification.Clean()
	fe.Add("specification", err)
	p.Specification = &spec
	return p, fe.err()
}

// IssueForm hands a product's specification to a client.
type IssueForm struct {
	ClientSapID Value `json:"client_sap_id"`
	DateOfIssue Value `json:"date_of_issue"`
}

func (f IssueForm) Clean() (clientSapID, dateOfIssue string, err error) {
	c := newCleaner()
	clientSapID = c.sapID("client_sap_id", f.ClientSapID, models.ClientSapDigits, true)
	dateOfIssue = c.date("date_of_issue", f.DateOfIssue, Today())
	return clientSapID, dateOfIssue, c.err()
}
