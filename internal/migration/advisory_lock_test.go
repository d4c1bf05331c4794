package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithMigrationLockReleasesAfterRun(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec(`SELECT pg_advisory_lock\(\$1\)`).WithArgs(migrationLockID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SELECT pg_advisory_unlock\(\$1\)`).WithArgs(migrationLockID).WillReturnResult(sqlmock.NewResult(0, 1))

	ran := false
	err = withMigrationLock(context.Background(), sqlDB, func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithMigrationLockReleasesOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec(`SELECT pg_advisory_lock\(\$1\)`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SELECT pg_advisory_unlock\(\$1\)`).WillReturnResult(sqlmock.NewResult(0, 1))

	boom := errors.New("boom")
	err = withMigrationLock(context.Background(), sqlDB, func() error { return boom })
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithMigrationLockNotAcquired(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec(`SELECT pg_advisory_lock\(\$1\)`).WillReturnError(context.DeadlineExceeded)

	err = withMigrationLock(context.Background(), sqlDB, func() error {
		t.Fatal("must not run without the lock")
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithMigrationLockRequiresDB(t *testing.T) {
	require.Error(t, withMigrationLock(context.Background(), nil, func() error { return nil }))
}
