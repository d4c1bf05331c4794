package service

import (
	"fmt"
	"strconv"

	"github.com/railzwaylabs/phonebill/internal/config"
	ratingdomain "github.com/railzwaylabs/phonebill/internal/rating/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewPricingConfig parses the tariff settings. Missing or malformed values
// fail with ErrInvalidConfiguration; nothing is defaulted.
func NewPricingConfig(cfg config.Config) (ratingdomain.PricingConfig, error) {
	national, err := parseAmount("pricing.national_price_per_call", cfg.Pricing.NationalPricePerCall)
	if err != nil {
		return ratingdomain.PricingConfig{}, err
	}
	international, err := parseAmount("pricing.international_price_per_second", cfg.Pricing.InternationalPricePerSecond)
	if err != nil {
		return ratingdomain.PricingConfig{}, err
	}

	if cfg.Pricing.FreeFriendsCalls == "" {
		return ratingdomain.PricingConfig{}, fmt.Errorf("%w: pricing.free_friends_calls is required", ratingdomain.ErrInvalidConfiguration)
	}
	freeCalls, err := strconv.Atoi(cfg.Pricing.FreeFriendsCalls)
	if err != nil {
		return ratingdomain.PricingConfig{}, fmt.Errorf("%w: pricing.free_friends_calls: %v", ratingdomain.ErrInvalidConfiguration, err)
	}

	return ratingdomain.PricingConfig{
		NationalPricePerCall:        national,
		InternationalPricePerSecond: international,
		FreeFriendsCalls:            freeCalls,
	}, nil
}

func parseAmount(key, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is required", ratingdomain.ErrInvalidConfiguration, key)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", ratingdomain.ErrInvalidConfiguration, key, err)
	}
	return amount, nil
}

// ChainBuilder hands out a new chain per invoice run.
type ChainBuilder interface {
	NewChain() (*Chain, error)
}

// Factory builds a fresh chain for every invoice run. Strategies carry
// running totals, so chains are never shared between requests.
type Factory struct {
	cfg ratingdomain.PricingConfig
	log *zap.Logger
}

type FactoryParam struct {
	fx.In

	Config ratingdomain.PricingConfig
	Log    *zap.Logger
}

// NewFactory validates the pricing configuration up front by building one
// throwaway chain.
func NewFactory(p FactoryParam) (*Factory, error) {
	f := &Factory{
		cfg: p.Config,
		log: p.Log.Named("rating.factory"),
	}
	if _, err := f.NewChain(); err != nil {
		return nil, err
	}

	f.log.Info("pricing configured",
		zap.String("national_price_per_call", p.Config.NationalPricePerCall.String()),
		zap.String("international_price_per_second", p.Config.InternationalPricePerSecond.String()),
		zap.Int("free_friends_calls", p.Config.FreeFriendsCalls),
	)
	return f, nil
}

// NewChain registers friends, national and international in that order. The
// national and international instances are shared with the friends fallback
// list, so friends calls are also booked in their underlying category.
func (f *Factory) NewChain() (*Chain, error) {
	national, err := NewNational(f.cfg.NationalPricePerCall)
	if err != nil {
		return nil, err
	}
	international, err := NewInternational(f.cfg.InternationalPricePerSecond)
	if err != nil {
		return nil, err
	}
	friends, err := NewFriends(f.cfg.FreeFriendsCalls, national, international)
	if err != nil {
		return nil, err
	}

	return NewChain(friends, national, international), nil
}
