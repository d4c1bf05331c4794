package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{name: "ok", req: Request{PhoneNumber: "+5411111111111", From: from, To: to}},
		{name: "same day", req: Request{PhoneNumber: "+5411111111111", From: from, To: from}},
		{name: "missing phone", req: Request{From: from, To: to}, wantErr: true},
		{name: "malformed phone", req: Request{PhoneNumber: "5411111111111", From: from, To: to}, wantErr: true},
		{name: "missing dates", req: Request{PhoneNumber: "+5411111111111"}, wantErr: true},
		{name: "inverted range", req: Request{PhoneNumber: "+5411111111111", From: to, To: from}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCurrentPeriod(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	from, to := CurrentPeriod(now)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, now, to)
}
