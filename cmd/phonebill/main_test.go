package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/railzwaylabs/phonebill/internal/callrecord/csvsource"
	invoicedomain "github.com/railzwaylabs/phonebill/internal/invoice/domain"
	"github.com/railzwaylabs/phonebill/internal/invoice/render"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInvoiceRequestDefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

	req, err := invoiceRequest(invoiceFlags{phone: "+5411111111111"}, now)
	require.NoError(t, err)
	assert.Equal(t, "+5411111111111", req.PhoneNumber)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), req.From)
	assert.Equal(t, now, req.To)
}

func TestInvoiceRequestExplicitPeriod(t *testing.T) {
	req, err := invoiceRequest(invoiceFlags{
		phone: "+5411111111111",
		from:  "2025-01-01",
		to:    "2025-01-31T23:59:59Z",
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), req.From)
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC), req.To)

	_, err = invoiceRequest(invoiceFlags{phone: "+5411111111111", from: "last week"}, time.Now())
	require.Error(t, err)
}

func TestWriteInvoice(t *testing.T) {
	inv := &invoicedomain.Invoice{
		Subscriber:      invoicedomain.SubscriberSummary{Name: "John Doe", PhoneNumber: "+5411111111111"},
		GrossTotal:      decimal.NewFromInt(20),
		FriendsDiscount: decimal.NewFromInt(-10),
		Total:           decimal.NewFromInt(10),
	}
	renderer := render.NewRenderer(zap.NewNop())

	var jsonOut bytes.Buffer
	require.NoError(t, writeInvoice(&jsonOut, renderer, inv, formatJSON))
	var view map[string]any
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &view))
	assert.Equal(t, 10.0, view["total"])

	var pdfOut bytes.Buffer
	require.NoError(t, writeInvoice(&pdfOut, renderer, inv, formatPDF))
	assert.True(t, bytes.HasPrefix(pdfOut.Bytes(), []byte("%PDF")))
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "import", "invoice", "generate"} {
		assert.True(t, names[want], want)
	}
}

func TestRunGenerate(t *testing.T) {
	var out bytes.Buffer
	flags := generateFlags{
		origin:  "+5491167930920",
		friends: []string{" +191167980952 ", ""},
		count:   25,
		from:    "2025-03-01",
		to:      "2025-03-31",
		seed:    7,
	}
	require.NoError(t, runGenerate(flags, time.Now(), &out))

	records, err := csvsource.Parse(&out)
	require.NoError(t, err)
	assert.Len(t, records, 25)

	flags.origin = "not-a-number"
	require.Error(t, runGenerate(flags, time.Now(), &out))
}
