package audit_test

import (
	"context"
	"testing"

	"qcr/internal/audit"
	"qcr/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	db, err := database.Open(database.MemoryPath)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db))

	rec := audit.NewRecorder(db, nil, nil)
	rec.Record(ctx, "qa", audit.ActionCreate, "client", 1, "Created client 1234567")
	rec.Record(ctx, "", audit.ActionUpdate, "order", 4, "Updated order")
	rec.Record(ctx, "qa", audit.ActionClose, "order", 4, "Closed report")

	entries, total, err := rec.List(ctx, audit.Query{Module: "order"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionClose, entries[0].Action)
	assert.Equal(t, "system", entries[1].Username)
	assert.Equal(t, "4", entries[1].RecordID)

	_, total, err = rec.List(ctx, audit.Query{Username: "qa"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
