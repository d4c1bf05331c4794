package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	invoicedomain "github.com/railzwaylabs/phonebill/internal/invoice/domain"
	ratingdomain "github.com/railzwaylabs/phonebill/internal/rating/domain"
	subscriberdomain "github.com/railzwaylabs/phonebill/internal/subscriber/domain"
)

// APIError is the error body returned to clients.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"detail"`
}

func (e *APIError) Error() string {
	return e.Code
}

var (
	ErrInvalidRequest = &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request"}
	ErrUserNotFound   = &APIError{Status: http.StatusNotFound, Code: "subscriber_not_found", Message: "User not found"}
	ErrNoCalls        = &APIError{Status: http.StatusNotFound, Code: "no_calls_in_range", Message: "No calls found for the given phone number"}
	ErrUpstream       = &APIError{Status: http.StatusBadGateway, Code: "upstream_unavailable", Message: "subscriber directory unavailable"}
	ErrMisconfigured  = &APIError{Status: http.StatusInternalServerError, Code: "invalid_configuration", Message: "pricing is not configured"}
	ErrRateLimited    = &APIError{Status: http.StatusTooManyRequests, Code: "rate_limited", Message: "too many requests"}
	ErrInternal       = &APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal server error"}
)

func invalidRequestError(err error) *APIError {
	return &APIError{Status: ErrInvalidRequest.Status, Code: ErrInvalidRequest.Code, Message: err.Error()}
}

// AbortWithError records err on the context for the request logger and writes
// the mapped API error.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	apiErr := toAPIError(err)
	c.AbortWithStatusJSON(apiErr.Status, apiErr)
}

func toAPIError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, invoicedomain.ErrInvalidRequest):
		return invalidRequestError(err)
	case errors.Is(err, subscriberdomain.ErrSubscriberNotFound):
		return ErrUserNotFound
	case errors.Is(err, callrecorddomain.ErrNoCallsInRange):
		return ErrNoCalls
	case errors.Is(err, subscriberdomain.ErrUpstreamUnavailable):
		return ErrUpstream
	case errors.Is(err, ratingdomain.ErrInvalidConfiguration):
		return ErrMisconfigured
	default:
		return ErrInternal
	}
}
