package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cosmosquiz/internal/testutil"
)

func TestQueryIDs(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	ctx := context.Background()

	ids, err := queryIDs(ctx, db, `SELECT column1 FROM (VALUES (3), (5), (3))`)
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{3: true, 5: true}, ids)
}

func TestQueryIDs_IterationErrorIsReturned(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)

	// the second row overflows while stepping, after the first was read
	ids, err := queryIDs(context.Background(), db, `
SELECT CASE WHEN column1 = 1 THEN 1 ELSE abs(column1 - 9223372036854775807 - 3) END
FROM (VALUES (1), (2))`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterate ids")
	assert.Nil(t, ids)
}
