package store

import (
	"context"
	"database/sql"
	"fmt"

	"qcr/internal/database"
	"qcr/internal/models"
)

var issuedSelect = "SELECT i.id, i.client_id, " + TextOf("c.sap_id", models.ClientSapDigits) + ", c.client_name, i.product_id, " +
	TextOf("p.sap_id", models.ProductSapDigits) + ", i.date_of_issue, " + specColumnList("i.") +
	" FROM issued_specifications i JOIN clients c ON c.id = i.client_id JOIN products p ON p.id = i.product_id"

func scanIssued(row interface{ Scan(...any) error }) (models.IssuedSpecification, error) {
	var is models.IssuedSpecification
	dest := append([]any{&is.ID, &is.ClientID, &is.ClientSapID, &is.ClientName, &is.ProductID, &is.ProductSapID, &is.DateOfIssue},
		specDest(&is.Values)...)
	err := row.Scan(dest...)
	is.Values.ProductID = is.ProductID
	return is, err
}

// Issue snapshots the product's current specification for the client with
// the given SAP id. Later edits of the specification do not touch it.
func (s *ProductStore) Issue(ctx context.Context, productID int, clients *ClientStore, clientSapID, dateOfIssue string) (models.IssuedSpecification, error) {
	var issued models.IssuedSpecification
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		client, err := clients.FindBySapID(ctx, tx, clientSapID)
		if err != nil {
			return err
		}
		spec, err := s.specification(ctx, tx, productID)
		if err != nil {
			return err
		}

		args := append([]any{client.ID, productID, dateOfIssue}, specArgs(spec)...)
		res, err := tx.ExecContext(ctx, "INSERT INTO issued_specifications (client_id, product_id, date_of_issue, "+
			specColumnList("")+") VALUES (?, ?, ?, "+placeholders(len(specColumnNames))+")", args...)
		if err != nil {
			return fmt.Errorf("insert issued specification: %w", err)
		}
		id, _ := res.LastInsertId()

		issued, err = scanIssued(tx.QueryRowContext(ctx, issuedSelect+" WHERE i.id = ?", id))
		return err
	})
	return issued, err
}

// ListIssued returns the issued specifications of a product, newest first.
func (s *ProductStore) ListIssued(ctx context.Context, productID int) ([]models.IssuedSpecification, error) {
	rows, err := s.DB.QueryContext(ctx, issuedSelect+" WHERE i.product_id = ? ORDER BY i.date_of_issue DESC, i.id DESC", productID)
	if err != nil {
		return nil, fmt.Errorf("list issued specifications: %w", err)
	}
	defer rows.Close()

	items := []models.IssuedSpecification{}
	for rows.Next() {
		is, err := scanIssued(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, is)
	}
	return items, rows.Err()
}

func (s *ProductStore) GetIssued(ctx context.Context, id int) (models.IssuedSpecification, error) {
	is, err := scanIssued(s.DB.QueryRowContext(ctx, issuedSelect+" WHERE i.id = ?", id))
	return is, notFound(err)
}
