package domain

import "errors"

var (
	ErrNoCallsInRange     = errors.New("no_calls_in_range")
	ErrInvalidRecord      = errors.New("invalid_call_record")
	ErrInvalidPhoneNumber = errors.New("invalid_phone_number")
)
