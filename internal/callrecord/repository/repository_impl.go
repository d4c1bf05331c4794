package repository

import (
	"context"
	"time"

	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"gorm.io/gorm"
)

const insertBatchSize = 500

type repo struct{}

func Provide() callrecorddomain.Repository {
	return &repo{}
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, records []*callrecorddomain.CallRecord) error {
	if len(records) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(records, insertBatchSize).Error
}

func (r *repo) ListByOrigin(ctx context.Context, db *gorm.DB, origin string, from, to time.Time) ([]*callrecorddomain.CallRecord, error) {
	var records []*callrecorddomain.CallRecord
	err := db.WithContext(ctx).
		Model(&callrecorddomain.CallRecord{}).
		Where("origin_number = ?", origin).
		Where("started_at >= ? AND started_at <= ?", from.UTC(), to.UTC()).
		Order("started_at ASC").
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&callrecorddomain.CallRecord{}).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
