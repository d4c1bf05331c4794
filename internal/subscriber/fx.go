package subscriber

import (
	"github.com/railzwaylabs/phonebill/internal/config"
	"github.com/railzwaylabs/phonebill/internal/subscriber/cache"
	"github.com/railzwaylabs/phonebill/internal/subscriber/client"
	subscriberdomain "github.com/railzwaylabs/phonebill/internal/subscriber/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("subscriber.lookup",
	fx.Provide(NewLookup),
)

type LookupParam struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Redis  *redis.Client `optional:"true"`
}

// NewLookup returns the users API client, behind the redis cache when redis
// is configured.
func NewLookup(p LookupParam) subscriberdomain.Lookup {
	c := client.NewFromConfig(p.Config, p.Log)
	if p.Redis == nil || p.Config.Subscribers.CacheTTL <= 0 {
		return c
	}
	return cache.New(c, p.Redis, p.Config.Subscribers.CacheTTL, p.Log)
}
