package service

import (
	ratingdomain "github.com/railzwaylabs/phonebill/internal/rating/domain"
	"github.com/shopspring/decimal"
)

// pricer is the category specific half of a strategy.
type pricer interface {
	IsApplicable(call ratingdomain.Call) bool
	Calculate(call ratingdomain.Call) decimal.Decimal
}

// base holds what every strategy shares: the category, the current
// subscriber and the running counters.
type base struct {
	category   ratingdomain.Category
	subscriber ratingdomain.Subscriber

	seconds int64
	amount  decimal.Decimal
}

func newBase(category ratingdomain.Category) base {
	return base{category: category, amount: decimal.Zero}
}

func (b *base) SetCurrentSubscriber(subscriber ratingdomain.Subscriber) {
	b.subscriber = subscriber
}

func (b *base) Accumulated() ratingdomain.Total {
	return ratingdomain.Total{Seconds: b.seconds, Amount: b.amount}
}

func (b *base) Totals() ratingdomain.Totals {
	return ratingdomain.Totals{b.category: b.Accumulated()}
}

func (b *base) process(p pricer, call ratingdomain.Call) (decimal.Decimal, bool) {
	if !p.IsApplicable(call) {
		return decimal.Zero, false
	}

	b.seconds += call.Duration
	amount := p.Calculate(call)
	if amount.IsPositive() {
		b.amount = b.amount.Add(amount)
	}
	return amount.Abs(), true
}
