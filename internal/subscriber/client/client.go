package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/railzwaylabs/phonebill/internal/config"
	subscriberdomain "github.com/railzwaylabs/phonebill/internal/subscriber/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const phonePlaceholder = ":phoneNumber"

// Doer is the part of *http.Client the lookup needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client looks subscribers up in the remote users API.
type Client struct {
	urlTemplate string
	http        Doer
	log         *zap.Logger
}

var _ subscriberdomain.Lookup = (*Client)(nil)

func New(urlTemplate string, doer Doer, log *zap.Logger) *Client {
	return &Client{
		urlTemplate: urlTemplate,
		http:        doer,
		log:         log.Named("subscriber.client"),
	}
}

func NewFromConfig(cfg config.Config, log *zap.Logger) *Client {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Tracing.Enabled {
		transport = otelhttp.NewTransport(transport)
	}
	return New(cfg.Subscribers.URL, &http.Client{Timeout: cfg.Subscribers.Timeout, Transport: transport}, log)
}

func (c *Client) Get(ctx context.Context, phoneNumber string) (subscriberdomain.Subscriber, error) {
	endpoint := strings.ReplaceAll(c.urlTemplate, phonePlaceholder, url.PathEscape(phoneNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return subscriberdomain.Subscriber{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("users api unreachable", zap.String("phone_number", phoneNumber), zap.Error(err))
		return subscriberdomain.Subscriber{}, fmt.Errorf("%w: %v", subscriberdomain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return subscriberdomain.Subscriber{}, subscriberdomain.ErrSubscriberNotFound
	case resp.StatusCode != http.StatusOK:
		c.log.Warn("users api unexpected status", zap.String("phone_number", phoneNumber), zap.Int("status", resp.StatusCode))
		return subscriberdomain.Subscriber{}, fmt.Errorf("%w: unexpected status code (%d) expected 200 OK", subscriberdomain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var sub subscriberdomain.Subscriber
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return subscriberdomain.Subscriber{}, fmt.Errorf("%w: parsing body: %v", subscriberdomain.ErrUpstreamUnavailable, err)
	}
	if sub.PhoneNumber != phoneNumber {
		return subscriberdomain.Subscriber{}, fmt.Errorf("%w: invalid response, phone numbers differ", subscriberdomain.ErrUpstreamUnavailable)
	}

	return sub, nil
}
