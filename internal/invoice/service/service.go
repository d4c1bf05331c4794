package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	invoicedomain "github.com/railzwaylabs/phonebill/internal/invoice/domain"
	"github.com/railzwaylabs/phonebill/internal/observability"
	ratingdomain "github.com/railzwaylabs/phonebill/internal/rating/domain"
	ratingservice "github.com/railzwaylabs/phonebill/internal/rating/service"
	subscriberdomain "github.com/railzwaylabs/phonebill/internal/subscriber/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/railzwaylabs/phonebill/internal/invoice/service")

type Params struct {
	fx.In

	Log         *zap.Logger
	Subscribers subscriberdomain.Lookup
	Calls       callrecorddomain.Source
	Rating      ratingservice.ChainBuilder
	Metrics     *observability.Metrics `optional:"true"`
}

type Service struct {
	log         *zap.Logger
	subscribers subscriberdomain.Lookup
	calls       callrecorddomain.Source
	rating      ratingservice.ChainBuilder
	metrics     *observability.Metrics
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		log:         p.Log.Named("invoice.service"),
		subscribers: p.Subscribers,
		calls:       p.Calls,
		rating:      p.Rating,
		metrics:     p.Metrics,
	}
}

func (s *Service) Build(ctx context.Context, req invoicedomain.Request) (*invoicedomain.Invoice, error) {
	ctx, span := tracer.Start(ctx, "invoice.Build", trace.WithAttributes(
		attribute.String("phone_number", req.PhoneNumber),
	))
	defer span.End()

	start := time.Now()
	inv, err := s.build(ctx, req)
	s.observe(inv, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Outcome(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int("invoice.calls", len(inv.Calls)))
	return inv, nil
}

func (s *Service) build(ctx context.Context, req invoicedomain.Request) (*invoicedomain.Invoice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	subscriber, err := s.subscribers.Get(ctx, req.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("lookup subscriber %s: %w", req.PhoneNumber, err)
	}

	records, err := s.calls.ListCalls(ctx, req.PhoneNumber, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("list calls of %s: %w", req.PhoneNumber, err)
	}
	if len(records) == 0 {
		return nil, callrecorddomain.ErrNoCallsInRange
	}

	chain, err := s.rating.NewChain()
	if err != nil {
		return nil, err
	}
	chain.SetCurrentSubscriber(ratingdomain.Subscriber{
		Address:     subscriber.Address,
		Name:        subscriber.Name,
		PhoneNumber: subscriber.PhoneNumber,
		Friends:     subscriber.Friends,
	})

	inv := &invoicedomain.Invoice{
		Subscriber: invoicedomain.SubscriberSummary{
			Address:     subscriber.Address,
			Name:        subscriber.Name,
			PhoneNumber: subscriber.PhoneNumber,
		},
		From:  req.From,
		To:    req.To,
		Calls: make([]invoicedomain.PricedCall, 0, len(records)),
	}

	for _, record := range records {
		call := record.Call()
		line := invoicedomain.PricedCall{
			PhoneNumber: call.Destination,
			Duration:    call.Duration,
			Timestamp:   call.Timestamp,
		}
		if amount, ok := chain.Process(call); ok {
			line.Amount = decimal.NewNullDecimal(amount)
		} else {
			s.log.Warn("call not priced",
				zap.String("origin", call.Origin),
				zap.String("destination", call.Destination),
				zap.Time("timestamp", call.Timestamp),
			)
		}
		inv.Calls = append(inv.Calls, line)
	}

	summary := chain.Summary()
	friends := summary.Category(ratingdomain.CategoryFriends)

	inv.TotalInternationalSeconds = summary.Category(ratingdomain.CategoryInternational).Seconds
	inv.TotalNationalSeconds = summary.Category(ratingdomain.CategoryNational).Seconds
	inv.TotalFriendsSeconds = friends.Seconds
	inv.Total = summary.Overall.Amount
	inv.FriendsDiscount = friends.Amount
	inv.GrossTotal = summary.Overall.Amount.Sub(friends.Amount)

	s.log.Debug("invoice built",
		zap.String("phone_number", req.PhoneNumber),
		zap.Int("calls", len(inv.Calls)),
		zap.String("total", inv.Total.String()),
		zap.Any("summary", summary.Map()),
	)
	return inv, nil
}

func (s *Service) observe(inv *invoicedomain.Invoice, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.InvoicesTotal.WithLabelValues(Outcome(err)).Inc()
	if err != nil {
		return
	}
	s.metrics.CallsPerInvoice.Observe(float64(len(inv.Calls)))
	s.metrics.InvoiceDuration.Observe(elapsed.Seconds())
}

// Outcome labels err for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, invoicedomain.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, subscriberdomain.ErrSubscriberNotFound):
		return "subscriber_not_found"
	case errors.Is(err, callrecorddomain.ErrNoCallsInRange):
		return "no_calls_in_range"
	case errors.Is(err, subscriberdomain.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ratingdomain.ErrInvalidConfiguration):
		return "invalid_configuration"
	default:
		return "error"
	}
}
