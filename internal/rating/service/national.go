package service

import (
	"fmt"

	ratingdomain "github.com/railzwaylabs/phonebill/internal/rating/domain"
	"github.com/shopspring/decimal"
)

// National charges a flat amount per call when caller and destination share
// the same prefix.
type National struct {
	base
	pricePerCall decimal.Decimal
}

var _ ratingdomain.Strategy = (*National)(nil)

func NewNational(pricePerCall decimal.Decimal) (*National, error) {
	if pricePerCall.IsNegative() {
		return nil, fmt.Errorf("%w: national price per call must not be negative", ratingdomain.ErrInvalidConfiguration)
	}
	return &National{
		base:         newBase(ratingdomain.CategoryNational),
		pricePerCall: pricePerCall,
	}, nil
}

func (s *National) IsApplicable(call ratingdomain.Call) bool {
	return ratingdomain.PhonePrefix(s.subscriber.PhoneNumber) == ratingdomain.PhonePrefix(call.Destination)
}

func (s *National) Calculate(ratingdomain.Call) decimal.Decimal {
	return s.pricePerCall
}

func (s *National) Process(call ratingdomain.Call) (decimal.Decimal, bool) {
	return s.process(s, call)
}
