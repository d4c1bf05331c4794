package callrecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/railzwaylabs/phonebill/internal/callrecord/csvsource"
	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"github.com/railzwaylabs/phonebill/internal/callrecord/repository"
	"github.com/railzwaylabs/phonebill/internal/callrecord/service"
	"github.com/railzwaylabs/phonebill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("callrecord.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewImporter),
	fx.Provide(NewSource),
)

type SourceParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	DB        *gorm.DB `optional:"true"`
	Repo      callrecorddomain.Repository
}

// NewSource returns the call history backend selected by
// call_records.source.
func NewSource(p SourceParams) (callrecorddomain.Source, error) {
	switch p.Config.CallRecords.Source {
	case config.CallRecordsSourceDatabase:
		if p.DB == nil {
			return nil, errors.New("call_records.source is database but no database is configured")
		}
		return service.NewDatabaseSource(service.DatabaseParams{DB: p.DB, Repo: p.Repo}), nil
	case config.CallRecordsSourceCSV:
		store := csvsource.NewStore(p.Config.CallRecords.CSVPath, p.Log)
		if err := store.Load(); err != nil {
			return nil, err
		}
		if p.Config.CallRecords.Watch {
			ctx, cancel := context.WithCancel(context.Background())
			p.Lifecycle.Append(fx.Hook{
				OnStart: func(context.Context) error {
					return store.Watch(ctx)
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown call_records.source %q", p.Config.CallRecords.Source)
	}
}
