package models

import "github.com/shopspring/decimal"

// APIResponse is the standard JSON envelope for all API responses.
type APIResponse struct {
	Data    interface{} `json:"data"`
	Meta    *Meta       `json:"meta,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Meta contains pagination and list-state metadata.
type Meta struct {
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Pages      int               `json:"pages,omitempty"`
	PagesRange []int             `json:"pages_range,omitempty"`
	SortBy     string            `json:"sort_by,omitempty"`
	OrderBy    string            `json:"order_by,omitempty"`
	NextOrder  string            `json:"next_order_by,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
}

// Order lifecycle statuses.
const (
	OrderStatusStarted = "Started"
	OrderStatusOpen    = "Open"
	OrderStatusDone    = "Done"
)

// SAP identifier widths.
const (
	ClientSapDigits  = 7
	ProductSapDigits = 7
	OrderSapDigits   = 8
)

type Client struct {
	ID         int    `json:"id"`
	SapID      string `json:"client_sap_id"`
	ClientName string `json:"client_name"`
}

type Product struct {
	ID            int            `json:"id"`
	SapID         string         `json:"product_sap_id"`
	Index         string         `json:"index"`
	Description   string         `json:"description"`
	Specification *Specification `json:"specification,omitempty"`
}

// Band is a target value with upper and lower tolerances.
type Band struct {
	Target decimal.Decimal `json:"target"`
	Top    decimal.Decimal `json:"top"`
	Bottom decimal.Decimal `json:"bottom"`
}

// IntBand is a Band for integer-valued properties.
type IntBand struct {
	Target int `json:"target"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Specification holds the technical tolerances of one product.
type Specification struct {
	ID                            int             `json:"id,omitempty"`
	ProductID                     int             `json:"product_id,omitempty"`
	InternalDiameter              Band            `json:"internal_diameter"`
	ExternalDiameter              Band            `json:"external_diameter"`
	WallThickness                 Band            `json:"wall_thickness"`
	Length                        Band            `json:"length"`
	FlatCrushResistance           IntBand         `json:"flat_crush_resistance"`
	MoistureContent               IntBand         `json:"moisture_content"`
	Colour                        string          `json:"colour"`
	Finish                        string          `json:"finish"`
	MaximumHeightOfPallet         decimal.Decimal `json:"maximum_height_of_pallet"`
	QuantityOnThePallet           int             `json:"quantity_on_the_pallet"`
	PalletProtectedWithPaperEdges string          `json:"pallet_protected_with_paper_edges"`
	PalletWrappedWithStretchFilm  string          `json:"pallet_wrapped_with_stretch_film"`
	CoresPackedIn                 string          `json:"cores_packed_in"`
	Remarks                       string          `json:"remarks"`
}

// IssuedSpecification is a frozen copy of a Specification handed to a client.
type IssuedSpecification struct {
	ID           int           `json:"id"`
	ClientID     int           `json:"client_id"`
	ClientSapID  string        `json:"client_sap_id"`
	ClientName   string        `json:"client_name"`
	ProductID    int           `json:"product_id"`
	ProductSapID string        `json:"product_sap_id"`
	DateOfIssue  string        `json:"date_of_issue"`
	Values       Specification `json:"specification"`
}

type Order struct {
	ID                        int                 `json:"id"`
	SapID                     string              `json:"order_sap_id"`
	ClientID                  int                 `json:"client_id"`
	ClientSapID               string              `json:"client_sap_id"`
	ClientName                string              `json:"client_name"`
	ProductID                 int                 `json:"product_id"`
	ProductSapID              string              `json:"product_sap_id"`
	ProductDescription        string              `json:"description"`
	DateOfProduction          string              `json:"date_of_production"`
	Status                    string              `json:"status"`
	Quantity                  *int                `json:"quantity"`
	InternalDiameterReference decimal.NullDecimal `json:"internal_diameter_reference"`
	ExternalDiameterReference decimal.NullDecimal `json:"external_diameter_reference"`
	Length                    decimal.NullDecimal `json:"length"`
}

type MeasurementReport struct {
	ID            int           `json:"id"`
	OrderID       int           `json:"order_id"`
	Author        string        `json:"author"`
	DateOfControl string        `json:"date_of_control"`
	Measurements  []Measurement `json:"measurements"`
}

// Triplet is a measured value with its tolerance limits.
type Triplet struct {
	ToleranceTop    decimal.Decimal `json:"tolerance_top"`
	Target          decimal.Decimal `json:"target"`
	ToleranceBottom decimal.Decimal `json:"tolerance_bottom"`
}

type Measurement struct {
	ID                        int     `json:"id"`
	ReportID                  int     `json:"report_id"`
	PalletNumber              int     `json:"pallet_number"`
	InternalDiameter          Triplet `json:"internal_diameter"`
	ExternalDiameter          Triplet `json:"external_diameter"`
	Length                    Triplet `json:"length"`
	FlatCrushResistanceTarget *int    `json:"flat_crush_resistance_target"`
	MoistureContentTarget     *int    `json:"moisture_content_target"`
	Weight                    *int    `json:"weight"`
	Remarks                   string  `json:"remarks"`
}

type User struct {
	ID          int     `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Role        string  `json:"role"`
	Active      int     `json:"active"`
	CreatedAt   string  `json:"created_at,omitempty"`
	LastLogin   *string `json:"last_login,omitempty"`
}

type AuditEntry struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Action    string `json:"action"`
	Module    string `json:"module"`
	RecordID  string `json:"record_id"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}
