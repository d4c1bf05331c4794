package service

import (
	"context"
	"fmt"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/phonebill/internal/callrecord/csvsource"
	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ImporterParams struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  callrecorddomain.Repository
}

// Importer loads call detail records from CSV into the database.
type Importer struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  callrecorddomain.Repository
}

func NewImporter(p ImporterParams) *Importer {
	return &Importer{
		db:    p.DB,
		log:   p.Log.Named("callrecord.importer"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Import parses r and inserts every record in a single transaction. Nothing is
// written when any row is invalid.
func (i *Importer) Import(ctx context.Context, r io.Reader) (int, error) {
	parsed, err := csvsource.Parse(r)
	if err != nil {
		return 0, err
	}
	if len(parsed) == 0 {
		return 0, nil
	}

	records := make([]*callrecorddomain.CallRecord, 0, len(parsed))
	for idx := range parsed {
		record := parsed[idx]
		record.ID = i.genID.Generate()
		records = append(records, &record)
	}

	err = i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return i.repo.InsertBatch(ctx, tx, records)
	})
	if err != nil {
		return 0, fmt.Errorf("insert call records: %w", err)
	}

	i.log.Info("call records imported", zap.Int("count", len(records)))
	return len(records), nil
}

// Count returns the number of stored call records.
func (i *Importer) Count(ctx context.Context) (int64, error) {
	return i.repo.Count(ctx, i.db)
}
