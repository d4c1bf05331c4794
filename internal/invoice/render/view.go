// Package render turns an invoice into its JSON and PDF documents.
package render

import (
	"encoding/json"
	"time"

	invoicedomain "github.com/railzwaylabs/phonebill/internal/invoice/domain"
	"github.com/shopspring/decimal"
)

// View is the invoice document served to clients. Amounts are JSON numbers
// carrying the exact decimal value.
type View struct {
	User                      UserView    `json:"user"`
	Calls                     []CallView  `json:"calls"`
	TotalInternationalSeconds int64       `json:"total_international_seconds"`
	TotalNationalSeconds      int64       `json:"total_national_seconds"`
	TotalFriendsSeconds       int64       `json:"total_friends_seconds"`
	GrossTotal                json.Number `json:"gross_total"`
	FriendsDiscount           json.Number `json:"friends_discount"`
	Total                     json.Number `json:"total"`
}

type UserView struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

type CallView struct {
	PhoneNumber string       `json:"phone_number"`
	Duration    int64        `json:"duration"`
	Timestamp   time.Time    `json:"timestamp"`
	Amount      *json.Number `json:"amount"`
}

func NewView(inv *invoicedomain.Invoice) View {
	calls := make([]CallView, 0, len(inv.Calls))
	for _, c := range inv.Calls {
		view := CallView{
			PhoneNumber: c.PhoneNumber,
			Duration:    c.Duration,
			Timestamp:   c.Timestamp,
		}
		if c.Amount.Valid {
			amount := number(c.Amount.Decimal)
			view.Amount = &amount
		}
		calls = append(calls, view)
	}

	return View{
		User: UserView{
			Address:     inv.Subscriber.Address,
			Name:        inv.Subscriber.Name,
			PhoneNumber: inv.Subscriber.PhoneNumber,
		},
		Calls:                     calls,
		TotalInternationalSeconds: inv.TotalInternationalSeconds,
		TotalNationalSeconds:      inv.TotalNationalSeconds,
		TotalFriendsSeconds:       inv.TotalFriendsSeconds,
		GrossTotal:                number(inv.GrossTotal),
		FriendsDiscount:           number(inv.FriendsDiscount),
		Total:                     number(inv.Total),
	}
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
