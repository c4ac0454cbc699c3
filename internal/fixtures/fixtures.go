// Package fixtures loads clients, products and production orders from a
// YAML seed file. Records pass through the same forms as the HTTP API.
package fixtures

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"qcr/internal/forms"
	"qcr/internal/store"
)

// File is the layout of a seed file.
type File struct {
	Clients  []forms.ClientForm          `yaml:"clients"`
	Products []forms.ProductWithSpecForm `yaml:"products"`
	Orders   []forms.OrderForm           `yaml:"orders"`
}

// Result counts what Apply inserted. Records whose SAP id already exists
// are skipped, so a seed file can be applied more than once.
type Result struct {
	Clients  int
	Products int
	Orders   int
	Skipped  int
}

// Parse decodes a seed file. Unknown keys are an error.
func Parse(data []byte) (File, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return File{}, errors.New("fixtures: seed file is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("fixtures: decode: %w", err)
	}
	return f, nil
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("fixtures: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Apply validates and inserts every record of f. Clients and products go
// first so orders can refer to them by SAP id. The first invalid record
// stops the run; records inserted before it stay.
func Apply(ctx context.Context, db *sql.DB, f File, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var res Result
	clients := store.NewClientStore(db)
	products := store.NewProductStore(db)
	orders := store.NewOrderStore(db)

	for i, cf := range f.Clients {
		c, err := cf.Clean()
		if err != nil {
			return res, fmt.Errorf("clients[%d]: %w", i, err)
		}
		err = clients.Create(ctx, &c)
		if skipped(err, log, "client", c.SapID) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("clients[%d]: %w", i, err)
		}
		res.Clients++
	}

	for i, pf := range f.Products {
		p, err := pf.Clean()
		if err != nil {
			return res, fmt.Errorf("products[%d]: %w", i, err)
		}
		err = products.Create(ctx, &p)
		if skipped(err, log, "product", p.SapID) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("products[%d]: %w", i, err)
		}
		res.Products++
	}

	for i, of := range f.Orders {
		o, err := of.Clean(false)
		if err != nil {
			return res, fmt.Errorf("orders[%d]: %w", i, err)
		}
		err = orders.Create(ctx, &o)
		if skipped(err, log, "order", o.SapID) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("orders[%d]: %w", i, err)
		}
		res.Orders++
	}

	log.Info("seed applied",
		zap.Int("clients", res.Clients),
		zap.Int("products", res.Products),
		zap.Int("orders", res.Orders),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func skipped(err error, log *zap.Logger, entity, sapID string) bool {
	var dup *store.DuplicateError
	if !errors.As(err, &dup) {
		return false
	}
	log.Debug("seed record exists", zap.String("entity", entity), zap.String("sap_id", sapID))
	return true
}
