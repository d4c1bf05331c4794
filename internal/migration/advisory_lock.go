package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// migrationLockID keys the postgres advisory lock serializing migrators.
const migrationLockID int64 = 0x70686f6e6562696c

// withMigrationLock runs fn while holding a session advisory lock. The lock
// is taken on a pinned connection so unlock reaches the same session; other
// migrators block until it is released or ctx expires.
func withMigrationLock(ctx context.Context, db *sql.DB, fn func() error) (err error) {
	if db == nil {
		return errors.New("migration lock requires database handle")
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("reserve lock connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, unlockErr := conn.ExecContext(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", migrationLockID)
		if unlockErr != nil && err == nil {
			err = fmt.Errorf("release migration lock: %w", unlockErr)
		}
	}()

	return fn()
}
