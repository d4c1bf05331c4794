package service

import (
	"fmt"

	ratingdomain "github.com/railzwaylabs/phonebill/internal/rating/domain"
	"github.com/shopspring/decimal"
)

// International charges per second when caller and destination prefixes
// differ.
type International struct {
	base
	pricePerSecond decimal.Decimal
}

var _ ratingdomain.Strategy = (*International)(nil)

func NewInternational(pricePerSecond decimal.Decimal) (*International, error) {
	if pricePerSecond.IsNegative() {
		return nil, fmt.Errorf("%w: international price per second must not be negative", ratingdomain.ErrInvalidConfiguration)
	}
	return &International{
		base:           newBase(ratingdomain.CategoryInternational),
		pricePerSecond: pricePerSecond,
	}, nil
}

func (s *International) IsApplicable(call ratingdomain.Call) bool {
	return ratingdomain.PhonePrefix(s.subscriber.PhoneNumber) != ratingdomain.PhonePrefix(call.Destination)
}

func (s *International) Calculate(call ratingdomain.Call) decimal.Decimal {
	return decimal.NewFromInt(call.Duration).Mul(s.pricePerSecond)
}

func (s *International) Process(call ratingdomain.Call) (decimal.Decimal, bool) {
	return s.process(s, call)
}
