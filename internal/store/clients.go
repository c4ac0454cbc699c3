package store

import (
	"context"
	"database/sql"
	"fmt"

	"qcr/internal/database"
	"qcr/internal/listing"
	"qcr/internal/models"
)

var clientSelect = "SELECT c.id, " + TextOf("c.sap_id", models.ClientSapDigits) + ", c.client_name FROM clients c"

var clientColumns = columns{
	filter: map[string]string{
		"client_sap_id": TextOf("c.sap_id", models.ClientSapDigits),
		"client_name":   "c.client_name",
	},
	sort: map[string]string{
		"client_sap_id": "c.sap_id",
		"client_name":   "c.client_name",
	},
	id: "c.id",
}

type ClientStore struct {
	DB *sql.DB
}

func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{DB: db}
}

func scanClient(row interface{ Scan(...any) error }) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.SapID, &c.ClientName)
	return c, err
}

func (s *ClientStore) Count(ctx context.Context, p listing.Predicate) (int, error) {
	where, args, err := clientColumns.where(p)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients c"+where, args...).Scan(&n)
	return n, err
}

func (s *ClientStore) Fetch(ctx context.Context, p listing.Predicate, srt listing.Sort, limit, offset int) ([]models.Client, error) {
	where, args, err := clientColumns.where(p)
	if err != nil {
		return nil, err
	}
	lim, limArgs := limitOffset(limit, offset)
	rows, err := s.DB.QueryContext(ctx, clientSelect+where+clientColumns.orderBy(srt)+lim, append(args, limArgs...)...)
	if err != nil {
		return nil, fmt.Errorf("fetch clients: %w", err)
	}
	defer rows.Close()

	var items []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (s *ClientStore) Get(ctx context.Context, id int) (models.Client, error) {
	c, err := scanClient(s.DB.QueryRowContext(ctx, clientSelect+" WHERE c.id = ?", id))
	return c, notFound(err)
}

// FindBySapID looks a client up by SAP id. A miss is a MissingRelationError.
func (s *ClientStore) FindBySapID(ctx context.Context, q database.Querier, sapID string) (models.Client, error) {
	n, err := sapValue(sapID)
	if err != nil {
		return models.Client{}, &MissingRelationError{Entity: "Client", SapID: sapID}
	}
	c, err := scanClient(q.QueryRowContext(ctx, clientSelect+" WHERE c.sap_id = ?", n))
	if err == sql.ErrNoRows {
		return c, &MissingRelationError{Entity: "Client", SapID: sapID}
	}
	return c, err
}

func (s *ClientStore) Create(ctx context.Context, c *models.Client) error {
	sap, err := sapValue(c.SapID)
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, "INSERT INTO clients (sap_id, client_name) VALUES (?, ?)", sap, c.ClientName)
	if database.IsUniqueViolation(err) {
		return &DuplicateError{Field: "client_sap_id", Value: c.SapID}
	}
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	id, _ := res.LastInsertId()
	c.ID = int(id)
	return nil
}

func (s *ClientStore) Update(ctx context.Context, c models.Client) error {
	sap, err := sapValue(c.SapID)
	if err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, "UPDATE clients SET sap_id = ?, client_name = ? WHERE id = ?", sap, c.ClientName, c.ID)
	if database.IsUniqueViolation(err) {
		return &DuplicateError{Field: "client_sap_id", Value: c.SapID}
	}
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a client with its orders and issued specifications.
func (s *ClientStore) Delete(ctx context.Context, id int) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
