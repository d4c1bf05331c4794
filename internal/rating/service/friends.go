package service

import (
	"fmt"

	ratingdomain "github.com/railzwaylabs/phonebill/internal/rating/domain"
	"github.com/shopspring/decimal"
)

// Friends intercepts calls to the subscriber's friends. The call is priced by
// the first fallback that claims it, which also books it in its own totals,
// and the negated price is reported as a discount for the first
// freeCalls calls.
type Friends struct {
	base

	fallbacks []ratingdomain.Strategy
	freeCalls int
	used      int
}

var _ ratingdomain.Strategy = (*Friends)(nil)

func NewFriends(freeCalls int, fallbacks ...ratingdomain.Strategy) (*Friends, error) {
	if freeCalls < 0 {
		return nil, fmt.Errorf("%w: free friends calls must not be negative", ratingdomain.ErrInvalidConfiguration)
	}
	return &Friends{
		base:      newBase(ratingdomain.CategoryFriends),
		fallbacks: fallbacks,
		freeCalls: freeCalls,
	}, nil
}

func (s *Friends) SetCurrentSubscriber(subscriber ratingdomain.Subscriber) {
	s.base.SetCurrentSubscriber(subscriber)
	for _, fallback := range s.fallbacks {
		fallback.SetCurrentSubscriber(subscriber)
	}
}

func (s *Friends) IsApplicable(call ratingdomain.Call) bool {
	return s.subscriber.HasFriend(call.Destination)
}

// Calculate is not pure: the delegated fallback accumulates the call and,
// while the allowance lasts, the discount is folded into the friends amount.
func (s *Friends) Calculate(call ratingdomain.Call) decimal.Decimal {
	amount := s.delegate(call).Neg()
	if s.used < s.freeCalls {
		s.used++
		s.amount = s.amount.Add(amount)
	}
	return amount
}

func (s *Friends) Process(call ratingdomain.Call) (decimal.Decimal, bool) {
	return s.process(s, call)
}

func (s *Friends) delegate(call ratingdomain.Call) decimal.Decimal {
	for _, fallback := range s.fallbacks {
		if amount, ok := fallback.Process(call); ok {
			return amount
		}
	}
	return decimal.Zero
}
