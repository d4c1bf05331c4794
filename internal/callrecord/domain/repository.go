package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, records []*CallRecord) error
	ListByOrigin(ctx context.Context, db *gorm.DB, origin string, from, to time.Time) ([]*CallRecord, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}

// Source serves the call history of a subscriber. Records are returned
// ascending by start time, both bounds inclusive. An empty result is
// reported as ErrNoCallsInRange.
type Source interface {
	ListCalls(ctx context.Context, origin string, from, to time.Time) ([]CallRecord, error)
}
