package rating

import (
	"github.com/railzwaylabs/phonebill/internal/rating/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rating.service",
	fx.Provide(service.NewPricingConfig),
	fx.Provide(service.NewFactory),
	fx.Provide(func(f *service.Factory) service.ChainBuilder { return f }),
)
