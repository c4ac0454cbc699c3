package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"qcr/internal/database"
	"qcr/internal/listing"
	"qcr/internal/models"
)

var productSelect = "SELECT p.id, " + TextOf("p.sap_id", models.ProductSapDigits) + ", p.product_index, p.description FROM products p"

var productColumns = columns{
	filter: map[string]string{
		"product_sap_id": TextOf("p.sap_id", models.ProductSapDigits),
		"index":          "p.product_index",
		"description":    "p.description",
	},
	sort: map[string]string{
		"product_sap_id": "p.sap_id",
		"index":          "p.product_index",
		"description":    "p.description",
	},
	id: "p.id",
}

// specColumnNames lists the specification value columns in the order of
// specArgs and specDest.
var specColumnNames = []string{
	"internal_diameter_target", "internal_diameter_top", "internal_diameter_bottom",
	"external_diameter_target", "external_diameter_top", "external_diameter_bottom",
	"wall_thickness_target", "wall_thickness_top", "wall_thickness_bottom",
	"length_target", "length_top", "length_bottom",
	"flat_crush_resistance_target", "flat_crush_resistance_top", "flat_crush_resistance_bottom",
	"moisture_content_target", "moisture_content_top", "moisture_content_bottom",
	"colour", "finish", "maximum_height_of_pallet", "quantity_on_the_pallet",
	"pallet_protected_with_paper_edges", "pallet_wrapped_with_stretch_film",
	"cores_packed_in", "remarks",
}

func specArgs(s models.Specification) []any {
	return []any{
		s.InternalDiameter.Target, s.InternalDiameter.Top, s.InternalDiameter.Bottom,
		s.ExternalDiameter.Target, s.ExternalDiameter.Top, s.ExternalDiameter.Bottom,
		s.WallThickness.Target, s.WallThickness.Top, s.WallThickness.Bottom,
		s.Length.Target, s.Length.Top, s.Length.Bottom,
		s.FlatCrushResistance.Target, s.FlatCrushResistance.Top, s.FlatCrushResistance.Bottom,
		s.MoistureContent.Target, s.MoistureContent.Top, s.MoistureContent.Bottom,
		s.Colour, s.Finish, s.MaximumHeightOfPallet, s.QuantityOnThePallet,
		s.PalletProtectedWithPaperEdges, s.PalletWrappedWithStretchFilm,
		s.CoresPackedIn, s.Remarks,
	}
}

func specDest(s *models.Specification) []any {
	return []any{
		&s.InternalDiameter.Target, &s.InternalDiameter.Top, &s.InternalDiameter.Bottom,
		&s.ExternalDiameter.Target, &s.ExternalDiameter.Top, &s.ExternalDiameter.Bottom,
		&s.WallThickness.Target, &s.WallThickness.Top, &s.WallThickness.Bottom,
		&s.Length.Target, &s.Length.Top, &s.Length.Bottom,
		&s.FlatCrushResistance.Target, &s.FlatCrushResistance.Top, &s.FlatCrushResistance.Bottom,
		&s.MoistureContent.Target, &s.MoistureContent.Top, &s.MoistureContent.Bottom,
		&s.Colour, &s.Finish, &s.MaximumHeightOfPallet, &s.QuantityOnThePallet,
		&s.PalletProtectedWithPaperEdges, &s.PalletWrappedWithStretchFilm,
		&s.CoresPackedIn, &s.Remarks,
	}
}

// specColumnList returns the specification columns joined, each with prefix.
func specColumnList(prefix string) string {
	cols := make([]string, len(specColumnNames))
	for i, c := range specColumnNames {
		cols[i] = prefix + c
	}
	return strings.Join(cols, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// defaultSpecification is stored for a product saved without one.
func defaultSpecification() models.Specification {
	return models.Specification{
		PalletProtectedWithPaperEdges: "N",
		PalletWrappedWithStretchFilm:  "N",
		CoresPackedIn:                 "Horizontal",
	}
}

type ProductStore struct {
	DB *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{DB: db}
}

func scanProduct(row interface{ Scan(...any) error }) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.SapID, &p.Index, &p.Description)
	return p, err
}

func (s *ProductStore) Count(ctx context.Context, p listing.Predicate) (int, error) {
	where, args, err := productColumns.where(p)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products p"+where, args...).Scan(&n)
	return n, err
}

func (s *ProductStore) Fetch(ctx context.Context, p listing.Predicate, srt listing.Sort, limit, offset int) ([]models.Product, error) {
	where, args, err := productColumns.where(p)
	if err != nil {
		return nil, err
	}
	lim, limArgs := limitOffset(limit, offset)
	rows, err := s.DB.QueryContext(ctx, productSelect+where+productColumns.orderBy(srt)+lim, append(args, limArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// Get returns a product with its specification.
func (s *ProductStore) Get(ctx context.Context, id int) (models.Product, error) {
	p, err := scanProduct(s.DB.QueryRowContext(ctx, productSelect+" WHERE p.id = ?", id))
	if err != nil {
		return p, notFound(err)
	}
	spec, err := s.specification(ctx, s.DB, id)
	if err != nil && err != ErrNotFound {
		return p, err
	}
	if err == nil {
		p.Specification = &spec
	}
	return p, nil
}

func (s *ProductStore) specification(ctx context.Context, q database.Querier, productID int) (models.Specification, error) {
	spec := models.Specification{ProductID: productID}
	dest := append([]any{&spec.ID}, specDest(&spec)...)
	err := q.QueryRowContext(ctx, "SELECT id, "+specColumnList("")+" FROM specifications WHERE product_id = ?", productID).Scan(dest...)
	return spec, notFound(err)
}

// FindBySapID looks a product up by SAP id. A miss is a MissingRelationError.
func (s *ProductStore) FindBySapID(ctx context.Context, q database.Querier, sapID string) (models.Product, error) {
	n, err := sapValue(sapID)
	if err != nil {
		return models.Product{}, &MissingRelationError{Entity: "Product", SapID: sapID}
	}
	p, err := scanProduct(q.QueryRowContext(ctx, productSelect+" WHERE p.sap_id = ?", n))
	if err == sql.ErrNoRows {
		return p, &MissingRelationError{Entity: "Product", SapID: sapID}
	}
	return p, err
}

// Create inserts a product and its specification in one transaction.
func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	sap, err := sapValue(p.SapID)
	if err != nil {
		return err
	}
	spec := defaultSpecification()
	if p.Specification != nil {
		spec = *p.Specification
	}

	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "INSERT INTO products (sap_id, product_index, description) VALUES (?, ?, ?)",
			sap, p.Index, p.Description)
		if database.IsUniqueViolation(err) {
			return &DuplicateError{Field: "product_sap_id", Value: p.SapID}
		}
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		id, _ := res.LastInsertId()
		p.ID = int(id)

		spec.ProductID = p.ID
		if err := s.saveSpecification(ctx, tx, &spec); err != nil {
			return err
		}
		p.Specification = &spec
		return nil
	})
}

// Update rewrites a product and its specification in one transaction.
func (s *ProductStore) Update(ctx context.Context, p *models.Product) error {
	sap, err := sapValue(p.SapID)
	if err != nil {
		return err
	}
	spec := defaultSpecification()
	if p.Specification != nil {
		spec = *p.Specification
	}

	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE products SET sap_id = ?, product_index = ?, description = ? WHERE id = ?",
			sap, p.Index, p.Description, p.ID)
		if database.IsUniqueViolation(err) {
			return &DuplicateError{Field: "product_sap_id", Value: p.SapID}
		}
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		spec.ProductID = p.ID
		if err := s.saveSpecification(ctx, tx, &spec); err != nil {
			return err
		}
		p.Specification = &spec
		return nil
	})
}

func (s *ProductStore) saveSpecification(ctx context.Context, q database.Querier, spec *models.Specification) error {
	updates := make([]string, len(specColumnNames))
	for i, c := range specColumnNames {
		updates[i] = c + " = excluded." + c
	}
	query := "INSERT INTO specifications (product_id, " + specColumnList("") + ") VALUES (?, " +
		placeholders(len(specColumnNames)) + ") ON CONFLICT(product_id) DO UPDATE SET " + strings.Join(updates, ", ")

	args := append([]any{spec.ProductID}, specArgs(*spec)...)
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save specification: %w", err)
	}
	return q.QueryRowContext(ctx, "SELECT id FROM specifications WHERE product_id = ?", spec.ProductID).Scan(&spec.ID)
}

// Delete removes a product with its specification, issued specifications
// and orders.
func (s *ProductStore) Delete(ctx context.Context, id int) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
