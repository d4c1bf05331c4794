package bootstrap

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// EnforceSchemaGate stops the API from starting on a database that has not
// been migrated to the version this binary embeds.
func EnforceSchemaGate(lc fx.Lifecycle, gate SchemaGate, log *zap.Logger) {
	log = log.Named("bootstrap")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := gate.MustBeActive(ctx); err != nil {
				log.Error("database schema is not ready, run phonebill migrate", zap.Error(err))
				return err
			}
			log.Info("database schema verified")
			return nil
		},
	})
}
