package fixtures_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qcr/internal/fixtures"
	"qcr/internal/forms"
	"qcr/internal/listing"
	"qcr/internal/models"
	"qcr/internal/store"
	"qcr/internal/testutil"
	"qcr/internal/validation"
)

const seed = `
clients:
  - client_sap_id: 0012345
    client_name: Acme Paper
  - client_sap_id: "7654321"
    client_name: Zenith
products:
  - product:
      product_sap_id: 1000001
      index: C76
      description: Core 76 x 7
    specification:
      internal_diameter_target: 76.2
      external_diameter_target: 90.2
      wall_thickness_target: 7
      length_target: 1000
      flat_crush_resistance_target: 1500
      moisture_content_target: 8
      cores_packed_in: Vertical
orders:
  - order_sap_id: 00000042
    client_sap_id: 0012345
    product_sap_id: 1000001
    date_of_production: 2024-03-01
    quantity: 250
    internal_diameter_reference: 76.2
    external_diameter_reference: 90.2
    length: 1000
`

func TestParseKeepsLeadingZeros(t *testing.T) {
	f, err := fixtures.Parse([]byte(seed))
	require.NoError(t, err)
	require.Len(t, f.Clients, 2)
	assert.Equal(t, forms.Value("0012345"), f.Clients[0].SapID)
	assert.Equal(t, forms.Value("00000042"), f.Orders[0].SapID)
	assert.Equal(t, forms.Value("Vertical"), f.Products[0].Specification.CoresPackedIn)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := fixtures.Parse([]byte("customers:\n  - name: x\n"))
	assert.Error(t, err)

	_, err = fixtures.Parse([]byte("  \n"))
	assert.Error(t, err)
}

func TestApplyInsertsAndIsRepeatable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	f, err := fixtures.Parse([]byte(seed))
	require.NoError(t, err)

	res, err := fixtures.Apply(ctx, db, f, nil)
	require.NoError(t, err)
	assert.Equal(t, fixtures.Result{Clients: 2, Products: 1, Orders: 1}, res)

	orders, err := store.NewOrderStore(db).Fetch(ctx, nil, listing.Sort{Key: listing.DefaultSortKey, Direction: listing.Asc}, 0, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "00000042", orders[0].SapID)
	assert.Equal(t, "Acme Paper", orders[0].ClientName)
	assert.Equal(t, models.OrderStatusStarted, orders[0].Status)

	res, err = fixtures.Apply(ctx, db, f, nil)
	require.NoError(t, err)
	assert.Equal(t, fixtures.Result{Skipped: 4}, res)
}

func TestApplyStopsAtInvalidRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f, err := fixtures.Parse([]byte(`
clients:
  - client_sap_id: 1111111
    client_name: Good
  - client_sap_id: 12
    client_name: ""
`))
	require.NoError(t, err)

	res, err := fixtures.Apply(context.Background(), db, f, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clients[1]")
	var ve *validation.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("client_name"))
	assert.Equal(t, 1, res.Clients)
}

func TestApplyOrderWithUnknownProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := fixtures.File{
		Clients: []forms.ClientForm{{SapID: "1111111", ClientName: "Good"}},
		Orders: []forms.OrderForm{{
			ClientSapID: "1111111", ProductSapID: "9999999", Quantity: "1",
			InternalDiameterReference: "1", ExternalDiameterReference: "2", Length: "3",
		}},
	}
	_, err := fixtures.Apply(context.Background(), db, f, nil)
	var missing *store.MissingRelationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Product", missing.Entity)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	f, err := fixtures.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Products, 1)

	_, err = fixtures.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
