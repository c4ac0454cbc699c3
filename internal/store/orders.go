package store

import (
	"context"
	"database/sql"
	"fmt"

	"qcr/internal/database"
	"qcr/internal/listing"
	"qcr/internal/models"
)

const orderJoins = " FROM orders o JOIN clients c ON c.id = o.client_id JOIN products p ON p.id = o.product_id"

var orderSelect = "SELECT o.id, " + nullableTextOf("o.sap_id", models.OrderSapDigits) + ", o.client_id, " +
	TextOf("c.sap_id", models.ClientSapDigits) + ", c.client_name, o.product_id, " +
	TextOf("p.sap_id", models.ProductSapDigits) + ", p.description, o.date_of_production, o.status, o.quantity, " +
	"o.internal_diameter_reference, o.external_diameter_reference, o.length" + orderJoins

var orderColumns = columns{
	filter: map[string]string{
		"order_sap_id":       nullableTextOf("o.sap_id", models.OrderSapDigits),
		"client_name":        "c.client_name",
		"product_sap_id":     TextOf("p.sap_id", models.ProductSapDigits),
		"description":        "p.description",
		"status":             "o.status",
		"date_of_production": "o.date_of_production",
	},
	sort: map[string]string{
		"order_sap_id":       "o.sap_id",
		"client_name":        "c.client_name",
		"product_sap_id":     "p.sap_id",
		"date_of_production": "o.date_of_production",
		"status":             "o.status",
		"description":        "p.description",
	},
	id: "o.id",
}

type OrderStore struct {
	DB       *sql.DB
	Clients  *ClientStore
	Products *ProductStore
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{DB: db, Clients: NewClientStore(db), Products: NewProductStore(db)}
}

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.SapID, &o.ClientID, &o.ClientSapID, &o.ClientName, &o.ProductID,
		&o.ProductSapID, &o.ProductDescription, &o.DateOfProduction, &o.Status, &o.Quantity,
		&o.InternalDiameterReference, &o.ExternalDiameterReference, &o.Length)
	return o, err
}

func (s *OrderStore) Count(ctx context.Context, p listing.Predicate) (int, error) {
	where, args, err := orderColumns.where(p)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.DB.QueryRowContext(ctx, "SELECT COUNT(*)"+orderJoins+where, args...).Scan(&n)
	return n, err
}

func (s *OrderStore) Fetch(ctx context.Context, p listing.Predicate, srt listing.Sort, limit, offset int) ([]models.Order, error) {
	where, args, err := orderColumns.where(p)
	if err != nil {
		return nil, err
	}
	lim, limArgs := limitOffset(limit, offset)
	rows, err := s.DB.QueryContext(ctx, orderSelect+where+orderColumns.orderBy(srt)+lim, append(args, limArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	defer rows.Close()

	var items []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func (s *OrderStore) Get(ctx context.Context, id int) (models.Order, error) {
	return s.GetWith(ctx, s.DB, id)
}

func (s *OrderStore) GetWith(ctx context.Context, q database.Querier, id int) (models.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, orderSelect+" WHERE o.id = ?", id))
	return o, notFound(err)
}

// ResolveRelations fills the client and product of o from their SAP ids.
func (s *OrderStore) ResolveRelations(ctx context.Context, q database.Querier, o *models.Order) error {
	client, err := s.Clients.FindBySapID(ctx, q, o.ClientSapID)
	if err != nil {
		return err
	}
	product, err := s.Products.FindBySapID(ctx, q, o.ProductSapID)
	if err != nil {
		return err
	}
	o.ClientID, o.ClientName = client.ID, client.ClientName
	o.ProductID, o.ProductDescription = product.ID, product.Description
	return nil
}

func orderSapArg(sapID string) (any, error) {
	if sapID == "" {
		return nil, nil
	}
	return sapValue(sapID)
}

// Create inserts a new order in status Started.
func (s *OrderStore) Create(ctx context.Context, o *models.Order) error {
	sap, err := orderSapArg(o.SapID)
	if err != nil {
		return err
	}
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if err := s.ResolveRelations(ctx, tx, o); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO orders (sap_id, client_id, product_id, date_of_production, status, quantity,
			internal_diameter_reference, external_diameter_reference, length) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sap, o.ClientID, o.ProductID, o.DateOfProduction, models.OrderStatusStarted, o.Quantity,
			o.InternalDiameterReference, o.ExternalDiameterReference, o.Length)
		if database.IsUniqueViolation(err) {
			return &DuplicateError{Field: "order_sap_id", Value: o.SapID}
		}
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		id, _ := res.LastInsertId()
		o.ID = int(id)
		o.Status = models.OrderStatusStarted
		return nil
	})
}

// Update rewrites the editable fields of an order. Status is left alone.
func (s *OrderStore) Update(ctx context.Context, o *models.Order) error {
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		return s.UpdateWith(ctx, tx, o)
	})
}

// UpdateWith resolves the relations of o and writes it using q.
func (s *OrderStore) UpdateWith(ctx context.Context, q database.Querier, o *models.Order) error {
	sap, err := orderSapArg(o.SapID)
	if err != nil {
		return err
	}
	if err := s.ResolveRelations(ctx, q, o); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `UPDATE orders SET sap_id = ?, client_id = ?, product_id = ?, date_of_production = ?, quantity = ?,
		internal_diameter_reference = ?, external_diameter_reference = ?, length = ? WHERE id = ?`,
		sap, o.ClientID, o.ProductID, o.DateOfProduction, o.Quantity,
		o.InternalDiameterReference, o.ExternalDiameterReference, o.Length, o.ID)
	if database.IsUniqueViolation(err) {
		return &DuplicateError{Field: "order_sap_id", Value: o.SapID}
	}
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *OrderStore) SetStatus(ctx context.Context, q database.Querier, id int, status string) error {
	res, err := q.ExecContext(ctx, "UPDATE orders SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an order with its measurement report.
func (s *OrderStore) Delete(ctx context.Context, id int) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
