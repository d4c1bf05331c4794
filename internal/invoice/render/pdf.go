package render

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	invoicedomain "github.com/railzwaylabs/phonebill/internal/invoice/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
	amountPlaces   = 2
)

var (
	titleText  = props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center, Top: 2}
	headerText = props.Text{Size: 9, Style: fontstyle.Bold, Top: 1}
	cellText   = props.Text{Size: 9, Top: 1}
	amountText = props.Text{Size: 9, Top: 1, Align: align.Right}
	totalText  = props.Text{Size: 10, Style: fontstyle.Bold, Top: 1, Align: align.Right}
)

type Renderer struct {
	log *zap.Logger
}

func NewRenderer(log *zap.Logger) *Renderer {
	return &Renderer{log: log.Named("invoice.render")}
}

// PDF renders the invoice as a single A4 document.
func (r *Renderer) PDF(inv *invoicedomain.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		Build()
	m := maroto.New(cfg)

	m.AddRows(text.NewRow(12, "Phone invoice", titleText))
	m.AddRow(6,
		text.NewCol(6, inv.Subscriber.Name, headerText),
		text.NewCol(6, fmt.Sprintf("Period %s to %s", inv.From.Format(dateLayout), inv.To.Format(dateLayout)), amountText),
	)
	m.AddRow(6,
		text.NewCol(6, inv.Subscriber.Address, cellText),
		text.NewCol(6, inv.Subscriber.PhoneNumber, amountText),
	)
	m.AddRow(6)

	m.AddRow(7,
		text.NewCol(4, "Destination", headerText),
		text.NewCol(4, "Date", headerText),
		text.NewCol(2, "Seconds", props.Text{Size: 9, Style: fontstyle.Bold, Top: 1, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Top: 1, Align: align.Right}),
	)
	for _, c := range inv.Calls {
		m.AddRow(6,
			text.NewCol(4, c.PhoneNumber, cellText),
			text.NewCol(4, c.Timestamp.UTC().Format(dateTimeLayout), cellText),
			text.NewCol(2, strconv.FormatInt(c.Duration, 10), amountText),
			text.NewCol(2, callAmount(c), amountText),
		)
	}
	m.AddRow(6)

	summaryRow := func(label, value string, style props.Text) {
		m.AddRow(6,
			text.NewCol(8, label, props.Text{Size: style.Size, Style: style.Style, Top: 1, Align: align.Right}),
			text.NewCol(4, value, style),
		)
	}
	summaryRow("National seconds", strconv.FormatInt(inv.TotalNationalSeconds, 10), amountText)
	summaryRow("International seconds", strconv.FormatInt(inv.TotalInternationalSeconds, 10), amountText)
	summaryRow("Friends seconds", strconv.FormatInt(inv.TotalFriendsSeconds, 10), amountText)
	summaryRow("Gross total", formatAmount(inv.GrossTotal), amountText)
	summaryRow("Friends discount", formatAmount(inv.FriendsDiscount), amountText)
	summaryRow("Total", formatAmount(inv.Total), totalText)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	out := doc.GetBytes()
	r.log.Debug("invoice pdf rendered",
		zap.String("phone_number", inv.Subscriber.PhoneNumber),
		zap.Int("bytes", len(out)),
	)
	return out, nil
}

// callAmount prints "-" for calls no strategy priced.
func callAmount(c invoicedomain.PricedCall) string {
	if !c.Amount.Valid {
		return "-"
	}
	return formatAmount(c.Amount.Decimal)
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(amountPlaces)
}
