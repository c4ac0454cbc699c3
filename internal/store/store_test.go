package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"qcr/internal/database"
	"qcr/internal/listing"
	"qcr/internal/models"
	"qcr/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func addClient(t *testing.T, s *store.ClientStore, sap, name string) models.Client {
	t.Helper()
	c := models.Client{SapID: sap, ClientName: name}
	require.NoError(t, s.Create(context.Background(), &c))
	return c
}

func addProduct(t *testing.T, s *store.ProductStore, sap, description string) models.Product {
	t.Helper()
	p := models.Product{
		SapID:       sap,
		Index:       "IDX-" + sap,
		Description: description,
		Specification: &models.Specification{
			InternalDiameter:              models.Band{Target: decimal.RequireFromString("76.2")},
			Colour:                        "brown",
			PalletProtectedWithPaperEdges: "Y",
			PalletWrappedWithStretchFilm:  "N",
			CoresPackedIn:                 "Vertical",
		},
	}
	require.NoError(t, s.Create(context.Background(), &p))
	return p
}

func addOrder(t *testing.T, s *store.OrderStore, sap, clientSap, productSap, date string) models.Order {
	t.Helper()
	o := models.Order{
		SapID:            sap,
		ClientSapID:      clientSap,
		ProductSapID:     productSap,
		DateOfProduction: date,
		Quantity:         ptr(100),
		Length:           decimal.NewNullDecimal(decimal.RequireFromString("1000")),
	}
	require.NoError(t, s.Create(context.Background(), &o))
	return o
}

func TestClientSapIDKeepsLeadingZeros(t *testing.T) {
	db := openDB(t)
	clients := store.NewClientStore(db)
	c := addClient(t, clients, "0012345", "Acme")

	got, err := clients.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "0012345", got.SapID)
}

func TestClientSubstringFilterMatchesSapID(t *testing.T) {
	db := openDB(t)
	clients := store.NewClientStore(db)
	addClient(t, clients, "1234567", "Acme")
	addClient(t, clients, "7654321", "Globex")

	p := listing.Predicate{{Field: "client_sap_id", Op: listing.OpContains, Value: "234"}}
	n, err := clients.Count(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := clients.Fetch(context.Background(), p, listing.Sort{Key: "id", Direction: listing.Asc}, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme", items[0].ClientName)
}

func TestFilterFoldsNonASCIICase(t *testing.T) {
	db := openDB(t)
	clients := store.NewClientStore(db)
	addClient(t, clients, "1000001", "ŁÓDŹ Papier")
	addClient(t, clients, "1000002", "Gdańsk Tuleje")

	for _, q := range []string{"ŁÓDŹ", "łódź", "Łódź", "papier", "GDAŃSK"} {
		n, err := clients.Count(context.Background(), listing.Predicate{{Field: "client_name", Op: listing.OpContains, Value: q}})
		require.NoError(t, err)
		assert.Equal(t, 1, n, q)
	}
}

func TestFilterEscapesLikeWildcards(t *testing.T) {
	db := openDB(t)
	clients := store.NewClientStore(db)
	addClient(t, clients, "1000001", "100% Paper")
	addClient(t, clients, "1000002", "Paper Mill")

	n, err := clients.Count(context.Background(), listing.Predicate{{Field: "client_name", Op: listing.OpContains, Value: "%"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClientDuplicateSapID(t *testing.T) {
	db := openDB(t)
	clients := store.NewClientStore(db)
	addClient(t, clients, "1234567", "Acme")

	err := clients.Create(context.Background(), &models.Client{SapID: "1234567", ClientName: "Other"})
	var dup *store.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "client_sap_id", dup.Field)
}

func TestGetMissingClient(t *testing.T) {
	db := openDB(t)
	_, err := store.NewClientStore(db).Get(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProductCreateStoresSpecification(t *testing.T) {
	db := openDB(t)
	products := store.NewProductStore(db)
	p := addProduct(t, products, "7654321", "Core 76")

	got, err := products.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Specification)
	assert.True(t, decimal.RequireFromString("76.2").Equal(got.Specification.InternalDiameter.Target))
	assert.Equal(t, "Vertical", got.Specification.CoresPackedIn)
}

func TestIssuedSpecificationIsASnapshot(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	clients := store.NewClientStore(db)
	products := store.NewProductStore(db)
	addClient(t, clients, "1234567", "Acme")
	p := addProduct(t, products, "7654321", "Core 76")

	issued, err := products.Issue(ctx, p.ID, clients, "1234567", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "brown", issued.Values.Colour)
	assert.Equal(t, "Acme", issued.ClientName)

	p.Specification.Colour = "white"
	require.NoError(t, products.Update(ctx, &p))

	got, err := products.GetIssued(ctx, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, "brown", got.Values.Colour)

	list, err := products.ListIssued(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestIssueToUnknownClient(t *testing.T) {
	db := openDB(t)
	products := store.NewProductStore(db)
	p := addProduct(t, products, "7654321", "Core 76")

	_, err := products.Issue(context.Background(), p.ID, store.NewClientStore(db), "1111111", "2024-03-01")
	var missing *store.MissingRelationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Client with SAP id 1111111 does not exist", err.Error())
}

func TestOrderCreateResolvesRelations(t *testing.T) {
	db := openDB(t)
	orders := store.NewOrderStore(db)
	addClient(t, orders.Clients, "1234567", "Acme")
	addProduct(t, orders.Products, "7654321", "Core 76")

	o := addOrder(t, orders, "", "1234567", "7654321", "2024-01-15")
	assert.Equal(t, models.OrderStatusStarted, o.Status)

	got, err := orders.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.SapID)
	assert.Equal(t, "Acme", got.ClientName)
	assert.Equal(t, "Core 76", got.ProductDescription)
	require.True(t, got.Length.Valid)
	assert.True(t, decimal.RequireFromString("1000").Equal(got.Length.Decimal))
}

func TestOrderCreateMissingClient(t *testing.T) {
	db := openDB(t)
	orders := store.NewOrderStore(db)
	addProduct(t, orders.Products, "7654321", "Core 76")

	err := orders.Create(context.Background(), &models.Order{
		ClientSapID: "1111111", ProductSapID: "7654321", DateOfProduction: "2024-01-15",
	})
	assert.EqualError(t, err, "Client with SAP id 1111111 does not exist")

	n, err := orders.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderSortAcrossRelations(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	orders := store.NewOrderStore(db)
	addClient(t, orders.Clients, "1000001", "Zeta")
	addClient(t, orders.Clients, "1000002", "Alpha")
	addProduct(t, orders.Products, "7654321", "Core 76")
	addOrder(t, orders, "10000001", "1000001", "7654321", "2024-01-01")
	addOrder(t, orders, "10000002", "1000002", "7654321", "2024-02-01")

	items, err := orders.Fetch(ctx, nil, listing.Sort{Key: "client_name", Direction: listing.Asc}, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alpha", items[0].ClientName)

	items, err = orders.Fetch(ctx, nil, listing.Sort{Key: "date_of_production", Direction: listing.Desc}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "10000002", items[0].SapID)
}

func TestOrderFilters(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	orders := store.NewOrderStore(db)
	addClient(t, orders.Clients, "1000001", "Acme")
	addProduct(t, orders.Products, "7654321", "Core 76")
	first := addOrder(t, orders, "10000001", "1000001", "7654321", "2024-01-10")
	addOrder(t, orders, "", "1000001", "7654321", "2024-03-10")
	require.NoError(t, orders.SetStatus(ctx, db, first.ID, models.OrderStatusOpen))

	cases := []struct {
		name string
		pred listing.Predicate
		want int
	}{
		{"status case-insensitive", listing.Predicate{{Field: "status", Op: listing.OpEqualFold, Value: "open"}}, 1},
		{"date range", listing.Predicate{{Field: "date_of_production", Op: listing.OpBetween, Value: "2024-01-01", Upper: "2024-01-31"}}, 1},
		{"order sap id substring", listing.Predicate{{Field: "order_sap_id", Op: listing.OpContains, Value: "0001"}}, 1},
		{"product sap id", listing.Predicate{{Field: "product_sap_id", Op: listing.OpContains, Value: "765"}}, 2},
		{"client name", listing.Predicate{{Field: "client_name", Op: listing.OpContains, Value: "ACM"}}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := orders.Count(ctx, tc.pred)
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestUnknownFilterField(t *testing.T) {
	db := openDB(t)
	_, err := store.NewClientStore(db).Count(context.Background(), listing.Predicate{{Field: "nope", Op: listing.OpContains}})
	assert.Error(t, err)
}

func TestOrderUpdateKeepsStatus(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	orders := store.NewOrderStore(db)
	addClient(t, orders.Clients, "1000001", "Acme")
	addProduct(t, orders.Products, "7654321", "Core 76")
	o := addOrder(t, orders, "", "1000001", "7654321", "2024-01-10")
	require.NoError(t, orders.SetStatus(ctx, db, o.ID, models.OrderStatusDone))

	o.SapID = "12345678"
	o.Quantity = ptr(5)
	require.NoError(t, orders.Update(ctx, &o))

	got, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDone, got.Status)
	assert.Equal(t, "12345678", got.SapID)
	require.NotNil(t, got.Quantity)
	assert.Equal(t, 5, *got.Quantity)
}

func TestReportMeasurements(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	orders := store.NewOrderStore(db)
	reports := store.NewReportStore()
	addClient(t, orders.Clients, "1000001", "Acme")
	addProduct(t, orders.Products, "7654321", "Core 76")
	o := addOrder(t, orders, "", "1000001", "7654321", "2024-01-10")

	weight := 12
	r := models.MeasurementReport{
		OrderID:       o.ID,
		Author:        "QA",
		DateOfControl: "2024-01-11",
		Measurements: []models.Measurement{
			{PalletNumber: 2, Weight: &weight},
			{PalletNumber: 1},
		},
	}
	require.NoError(t, reports.Insert(ctx, db, &r))

	got, err := reports.GetByOrder(ctx, db, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Measurements, 2)
	assert.Equal(t, 1, got.Measurements[0].PalletNumber)
	assert.Nil(t, got.Measurements[0].Weight)
	require.NotNil(t, got.Measurements[1].Weight)
	assert.Equal(t, 12, *got.Measurements[1].Weight)

	err = reports.InsertMeasurement(ctx, db, r.ID, &models.Measurement{PalletNumber: 1})
	var dup *store.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "pallet_number", dup.Field)
}

func TestParkPalletNumbersAllowsSwap(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	orders := store.NewOrderStore(db)
	reports := store.NewReportStore()
	addClient(t, orders.Clients, "1000001", "Acme")
	addProduct(t, orders.Products, "7654321", "Core 76")
	o := addOrder(t, orders, "", "1000001", "7654321", "2024-01-10")

	r := models.MeasurementReport{OrderID: o.ID, Author: "QA", DateOfControl: "2024-01-11",
		Measurements: []models.Measurement{{PalletNumber: 1}, {PalletNumber: 2}}}
	require.NoError(t, reports.Insert(ctx, db, &r))

	a, b := r.Measurements[0], r.Measurements[1]
	a.PalletNumber, b.PalletNumber = 2, 1
	require.NoError(t, reports.ParkPalletNumbers(ctx, db, r.ID))
	require.NoError(t, reports.UpdateMeasurement(ctx, db, r.ID, a))
	require.NoError(t, reports.UpdateMeasurement(ctx, db, r.ID, b))

	ids, err := reports.MeasurementIDs(ctx, db, r.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	got, err := reports.GetByOrder(ctx, db, o.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.Measurements[0].ID)
}

func TestDeleteClientCascadesToOrders(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	orders := store.NewOrderStore(db)
	c := addClient(t, orders.Clients, "1000001", "Acme")
	addProduct(t, orders.Products, "7654321", "Core 76")
	addOrder(t, orders, "", "1000001", "7654321", "2024-01-10")

	require.NoError(t, orders.Clients.Delete(ctx, c.ID))
	n, err := orders.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, orders.Clients.Delete(ctx, c.ID), store.ErrNotFound)
}

func ptr(n int) *int { return &n }
