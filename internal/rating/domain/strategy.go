package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidConfiguration = errors.New("invalid_configuration")
	ErrNoStrategies         = errors.New("no_strategies")
)

// Strategy prices the calls of one category and keeps running totals for
// them. SetCurrentSubscriber must be called before Process.
type Strategy interface {
	SetCurrentSubscriber(Subscriber)

	// IsApplicable reports whether this strategy claims the call. It has no
	// side effects.
	IsApplicable(Call) bool

	// Calculate returns the signed price of a call. Only called for calls the
	// strategy claims.
	Calculate(Call) decimal.Decimal

	// Process rates an applicable call: duration is always accumulated, the
	// calculated price only when strictly positive. The returned amount is the
	// absolute price; ok is false when the call is not applicable.
	Process(Call) (amount decimal.Decimal, ok bool)

	Totals() Totals
	Accumulated() Total
}

// PricingConfig holds the validated tariff values the strategies are built
// with.
type PricingConfig struct {
	NationalPricePerCall        decimal.Decimal
	InternationalPricePerSecond decimal.Decimal
	FreeFriendsCalls            int
}
