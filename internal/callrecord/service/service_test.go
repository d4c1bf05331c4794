package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/phonebill/internal/callrecord/csvsource"
	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"github.com/railzwaylabs/phonebill/internal/callrecord/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&callrecorddomain.CallRecord{}))
	return db
}

func newImporter(t *testing.T, db *gorm.DB) *Importer {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewImporter(ImporterParams{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestImportThenList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	importer := newImporter(t, db)

	n, err := importer.Import(ctx, strings.NewReader(`origin,destination,duration,timestamp
+54911111111,+54922222222,120,2025-03-20T10:00:00Z
+54911111111,+55922222222,200,2025-03-15T10:00:00Z
+54933333333,+54922222222,60,2025-03-16T10:00:00Z
`))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := importer.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	source := NewDatabaseSource(DatabaseParams{DB: db, Repo: repository.Provide()})
	calls, err := source.ListCalls(ctx, "+54911111111",
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "+55922222222", calls[0].DestinationNumber)
	assert.Equal(t, "+54922222222", calls[1].DestinationNumber)
	assert.NotZero(t, calls[0].ID)
}

func TestImportRejectsInvalidFileAtomically(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	importer := newImporter(t, db)

	_, err := importer.Import(ctx, strings.NewReader(`origin,destination,duration,timestamp
+54911111111,+54922222222,120,2025-03-20T10:00:00Z
+54911111111,+55922222222,abc,2025-03-15T10:00:00Z
`))
	require.ErrorIs(t, err, callrecorddomain.ErrInvalidRecord)

	count, err := importer.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDatabaseSourceNoCalls(t *testing.T) {
	db := newTestDB(t)
	source := NewDatabaseSource(DatabaseParams{DB: db, Repo: repository.Provide()})

	_, err := source.ListCalls(context.Background(), "+54911111111",
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, callrecorddomain.ErrNoCallsInRange)
}

func TestImportSpansBatches(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	importer := newImporter(t, db)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	records, err := csvsource.Generate(csvsource.GenerateOptions{
		Origin: "+5491167930920",
		Count:  1234,
		From:   from,
		To:     to,
		Seed:   3,
	})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, csvsource.Write(&buf, records))

	n, err := importer.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1234, n)

	source := NewDatabaseSource(DatabaseParams{DB: db, Repo: repository.Provide()})
	calls, err := source.ListCalls(ctx, "+5491167930920", from, to)
	require.NoError(t, err)
	require.Len(t, calls, 1234)

	ids := make(map[int64]struct{}, len(calls))
	for i, c := range calls {
		ids[c.ID.Int64()] = struct{}{}
		if i > 0 {
			assert.False(t, c.StartedAt.Before(calls[i-1].StartedAt))
		}
	}
	assert.Len(t, ids, 1234)
}
