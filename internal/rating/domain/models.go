// Package domain contains the rating contract: categories, running totals and
// the strategy interface every pricing rule implements.
package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the aggregation key of a pricing strategy.
type Category string

const (
	CategoryNational      Category = "national"
	CategoryInternational Category = "international"
	CategoryFriends       Category = "friends"
)

// SummaryKey names the synthesized grand total entry of a chain summary.
const SummaryKey = "summarize"

func (c Category) String() string {
	return string(c)
}

// Subscriber is the account the calls are rated for. Friends holds phone
// numbers and is treated as a set.
type Subscriber struct {
	Address     string
	Name        string
	PhoneNumber string
	Friends     []string
}

func (s Subscriber) HasFriend(number string) bool {
	return slices.Contains(s.Friends, number)
}

// Call is a single call detail record to be rated.
type Call struct {
	Origin      string
	Destination string
	Duration    int64 // seconds
	Timestamp   time.Time
}

// Total holds the running counters of one category.
type Total struct {
	Seconds int64           `json:"seconds"`
	Amount  decimal.Decimal `json:"amount"`
}

func (t Total) Add(other Total) Total {
	return Total{
		Seconds: t.Seconds + other.Seconds,
		Amount:  t.Amount.Add(other.Amount),
	}
}

// Totals is a snapshot of counters keyed by category.
type Totals map[Category]Total

// Summary merges every strategy's totals plus the grand total over all of
// them.
type Summary struct {
	Categories Totals
	Overall    Total
}

// Category returns the totals of c, zero when no strategy reported it.
func (s Summary) Category(c Category) Total {
	if t, ok := s.Categories[c]; ok {
		return t
	}
	return Total{Amount: decimal.Zero}
}

// Map renders the summary in its flat form, with the grand total under
// SummaryKey.
func (s Summary) Map() map[string]Total {
	out := make(map[string]Total, len(s.Categories)+1)
	for c, t := range s.Categories {
		out[c.String()] = t
	}
	out[SummaryKey] = s.Overall
	return out
}

// PhonePrefix returns the first three characters of a phone number, used as a
// country/area code proxy. Shorter numbers are returned whole.
func PhonePrefix(number string) string {
	if len(number) < 3 {
		return number
	}
	return number[:3]
}
