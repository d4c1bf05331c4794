// Package domain defines the subscriber directory the invoices are issued
// against.
package domain

import (
	"context"
	"errors"
)

var (
	ErrSubscriberNotFound  = errors.New("subscriber_not_found")
	ErrUpstreamUnavailable = errors.New("upstream_unavailable")
)

// Subscriber mirrors the directory's user document.
type Subscriber struct {
	Address     string   `json:"address"`
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phone_number"`
	Friends     []string `json:"friends"`
}

// Lookup resolves a subscriber by phone number. Unknown numbers fail with
// ErrSubscriberNotFound.
type Lookup interface {
	Get(ctx context.Context, phoneNumber string) (Subscriber, error)
}
