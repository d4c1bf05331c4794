package service

import (
	ratingdomain "github.com/railzwaylabs/phonebill/internal/rating/domain"
	"github.com/shopspring/decimal"
)

// Chain routes each call to the first registered strategy that claims it.
// Registration order matters: friends must come before national and
// international so that calls to friends are intercepted first.
type Chain struct {
	strategies []ratingdomain.Strategy
}

func NewChain(strategies ...ratingdomain.Strategy) *Chain {
	c := &Chain{}
	for _, s := range strategies {
		c.AddStrategy(s)
	}
	return c
}

func (c *Chain) AddStrategy(strategy ratingdomain.Strategy) {
	c.strategies = append(c.strategies, strategy)
}

func (c *Chain) SetCurrentSubscriber(subscriber ratingdomain.Subscriber) {
	for _, s := range c.strategies {
		s.SetCurrentSubscriber(subscriber)
	}
}

// Process returns the amount of the first strategy that claims the call, or
// ok == false when none does.
func (c *Chain) Process(call ratingdomain.Call) (decimal.Decimal, bool) {
	for _, s := range c.strategies {
		if amount, ok := s.Process(call); ok {
			return amount, true
		}
	}
	return decimal.Zero, false
}

func (c *Chain) Summary() ratingdomain.Summary {
	summary := ratingdomain.Summary{
		Categories: ratingdomain.Totals{},
		Overall:    ratingdomain.Total{Amount: decimal.Zero},
	}
	for _, s := range c.strategies {
		summary.Overall = summary.Overall.Add(s.Accumulated())
		for category, total := range s.Totals() {
			summary.Categories[category] = total
		}
	}
	return summary
}
