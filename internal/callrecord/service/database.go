package service

import (
	"context"
	"time"

	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type DatabaseParams struct {
	fx.In

	DB   *gorm.DB
	Repo callrecorddomain.Repository
}

// DatabaseSource serves call history from the call_records table.
type DatabaseSource struct {
	db   *gorm.DB
	repo callrecorddomain.Repository
}

func NewDatabaseSource(p DatabaseParams) *DatabaseSource {
	return &DatabaseSource{db: p.DB, repo: p.Repo}
}

func (s *DatabaseSource) ListCalls(ctx context.Context, origin string, from, to time.Time) ([]callrecorddomain.CallRecord, error) {
	items, err := s.repo.ListByOrigin(ctx, s.db, origin, from, to)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, callrecorddomain.ErrNoCallsInRange
	}

	out := make([]callrecorddomain.CallRecord, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}
