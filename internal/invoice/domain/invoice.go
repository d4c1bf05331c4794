// Package domain defines the invoice document and the request that produces
// it.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"github.com/shopspring/decimal"
)

var ErrInvalidRequest = errors.New("invalid_request")

type Service interface {
	Build(ctx context.Context, req Request) (*Invoice, error)
}

// Request asks for the invoice of PhoneNumber over [From, To], both
// inclusive.
type Request struct {
	PhoneNumber string
	From        time.Time
	To          time.Time
}

func (r Request) Validate() error {
	if r.PhoneNumber == "" {
		return fmt.Errorf("%w: phone_number is required", ErrInvalidRequest)
	}
	if err := callrecorddomain.ValidatePhoneNumber(r.PhoneNumber); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("%w: date_from and date_to are required", ErrInvalidRequest)
	}
	if r.From.After(r.To) {
		return fmt.Errorf("%w: date_from %s is after date_to %s", ErrInvalidRequest,
			r.From.Format(time.RFC3339), r.To.Format(time.RFC3339))
	}
	return nil
}

// CurrentPeriod returns the invoice period used when none is given: from the
// start of now's month up to now.
func CurrentPeriod(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), now
}

type SubscriberSummary struct {
	Address     string
	Name        string
	PhoneNumber string
}

// PricedCall is one line of the invoice. Amount is invalid when no pricing
// rule claimed the call.
type PricedCall struct {
	PhoneNumber string
	Duration    int64
	Timestamp   time.Time
	Amount      decimal.NullDecimal
}

type Invoice struct {
	Subscriber SubscriberSummary
	From       time.Time
	To         time.Time
	Calls      []PricedCall

	TotalInternationalSeconds int64
	TotalNationalSeconds      int64
	TotalFriendsSeconds       int64

	GrossTotal      decimal.Decimal
	FriendsDiscount decimal.Decimal
	Total           decimal.Decimal
}
