package csvsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleCalls = `numero_origen,numero_destino,duracion,fecha
+54911111111,+54922222222,120,2025-03-20T10:00:00Z
+54911111111,+55922222222,200,2025-03-15T10:00:00Z
+54933333333,+54922222222,60,2025-03-16T10:00:00Z
+54911111111,+54922222222,30,2025-04-01T00:00:00Z
`

func writeCalls(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestStoreListCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.csv")
	writeCalls(t, path, sampleCalls)

	store := NewStore(path, zap.NewNop())
	require.NoError(t, store.Load())

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	calls, err := store.ListCalls(context.Background(), "+54911111111", from, to)
	require.NoError(t, err)
	require.Len(t, calls, 3)

	// ascending by start time, upper bound inclusive
	assert.Equal(t, int64(200), calls[0].DurationSeconds)
	assert.Equal(t, int64(120), calls[1].DurationSeconds)
	assert.Equal(t, int64(30), calls[2].DurationSeconds)
}

func TestStoreNoCallsInRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.csv")
	writeCalls(t, path, sampleCalls)

	store := NewStore(path, zap.NewNop())
	require.NoError(t, store.Load())

	_, err := store.ListCalls(context.Background(), "+54911111111",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, callrecorddomain.ErrNoCallsInRange)

	_, err = store.ListCalls(context.Background(), "+59900000000",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, callrecorddomain.ErrNoCallsInRange)
}

func TestStoreLoadKeepsSnapshotOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.csv")
	writeCalls(t, path, sampleCalls)

	store := NewStore(path, zap.NewNop())
	require.NoError(t, store.Load())

	writeCalls(t, path, "origin,destination,duration,timestamp\n+54911111111,+54922222222,x,2025-03-15\n")
	require.Error(t, store.Load())

	calls, err := store.ListCalls(context.Background(), "+54933333333",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, calls, 1)
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.csv"), zap.NewNop())
	require.Error(t, store.Load())
}

func TestStoreWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.csv")
	writeCalls(t, path, sampleCalls)

	store := NewStore(path, zap.NewNop())
	require.NoError(t, store.Load())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Watch(ctx))

	writeCalls(t, path, sampleCalls+"+54977777777,+54922222222,10,2025-03-18T10:00:00Z\n")

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	require.Eventually(t, func() bool {
		calls, err := store.ListCalls(context.Background(), "+54977777777", from, to)
		return err == nil && len(calls) == 1
	}, 5*time.Second, 20*time.Millisecond)
}
