package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"qcr/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMigrated(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openMigrated(t)
	require.NoError(t, database.Migrate(context.Background(), db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN
		('clients','products','specifications','issued_specifications','orders','measurement_reports','measurements')`).Scan(&n))
	assert.Equal(t, 7, n)
}

func TestForeignKeyCascade(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO clients (id, sap_id, client_name) VALUES (1, 1234567, 'Acme')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO products (id, sap_id) VALUES (1, 7654321)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders (id, sap_id, client_id, product_id, date_of_production) VALUES (1, 12345678, 1, 1, '2024-01-01')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO measurement_reports (id, order_id, author, date_of_control) VALUES (1, 1, 'QA', '2024-01-02')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO measurements (report_id, pallet_number) VALUES (1, 1), (1, 2)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `DELETE FROM clients WHERE id = 1`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM measurements`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&n))
	assert.Zero(t, n)
}

func TestPalletNumberUniquePerReport(t *testing.T) {
	db := openMigrated(t)
	for _, stmt := range []string{
		`INSERT INTO clients (id, sap_id, client_name) VALUES (1, 1, 'A')`,
		`INSERT INTO products (id, sap_id) VALUES (1, 1)`,
		`INSERT INTO orders (id, client_id, product_id, date_of_production) VALUES (1, 1, 1, '2024-01-01')`,
		`INSERT INTO measurement_reports (id, order_id, author, date_of_control) VALUES (1, 1, 'QA', '2024-01-01')`,
		`INSERT INTO measurements (report_id, pallet_number) VALUES (1, 1)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	_, err := db.Exec(`INSERT INTO measurements (report_id, pallet_number) VALUES (1, 1)`)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := openMigrated(t)
	boom := errors.New("boom")

	err := database.WithTx(context.Background(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO clients (sap_id, client_name) VALUES (1111111, 'Gone')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM clients`).Scan(&n))
	assert.Zero(t, n)
}

func TestNullStringHelper(t *testing.T) {
	assert.Nil(t, database.SP(sql.NullString{}))
	assert.Equal(t, "x", *database.SP(sql.NullString{String: "x", Valid: true}))
}

func TestFoldLowercasesUnicode(t *testing.T) {
	db := openMigrated(t)

	var got string
	require.NoError(t, db.QueryRow(`SELECT `+database.FoldFunc+`('ŁÓDŹ Gdańsk')`).Scan(&got))
	assert.Equal(t, "łódź gdańsk", got)

	var null sql.NullString
	require.NoError(t, db.QueryRow(`SELECT `+database.FoldFunc+`(NULL)`).Scan(&null))
	assert.False(t, null.Valid)
}
