package csvsource

import (
	"bytes"
	"testing"
	"time"

	ratingdomain "github.com/railzwaylabs/phonebill/internal/rating/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateOptions() GenerateOptions {
	return GenerateOptions{
		Origin:  "+5491167930920",
		Friends: []string{"+191167980952", "+5491167980950"},
		Count:   300,
		From:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:      time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC),
		Seed:    42,
	}
}

func TestGenerateRoundTrips(t *testing.T) {
	opts := generateOptions()
	records, err := Generate(opts)
	require.NoError(t, err)
	require.Len(t, records, opts.Count)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, records))

	parsed, err := Parse(&buf)
	require.NoError(t, err)
	require.Equal(t, records, parsed)

	kinds := map[string]int{}
	for i, r := range parsed {
		require.NoError(t, r.Validate())
		assert.Equal(t, opts.Origin, r.OriginNumber)
		assert.False(t, r.StartedAt.Before(opts.From))
		assert.False(t, r.StartedAt.After(opts.To))
		if i > 0 {
			assert.False(t, r.StartedAt.Before(parsed[i-1].StartedAt))
		}

		switch {
		case r.DestinationNumber == opts.Friends[0] || r.DestinationNumber == opts.Friends[1]:
			kinds["friend"]++
		case ratingdomain.PhonePrefix(r.DestinationNumber) == ratingdomain.PhonePrefix(opts.Origin):
			kinds["national"]++
		default:
			kinds["international"]++
		}
	}
	assert.Positive(t, kinds["friend"])
	assert.Positive(t, kinds["national"])
	assert.Positive(t, kinds["international"])
}

func TestGenerateIsReproducible(t *testing.T) {
	first, err := Generate(generateOptions())
	require.NoError(t, err)
	second, err := Generate(generateOptions())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerateOptions)
	}{
		{name: "bad origin", mutate: func(o *GenerateOptions) { o.Origin = "5491167930920" }},
		{name: "bad friend", mutate: func(o *GenerateOptions) { o.Friends = []string{"friend"} }},
		{name: "zero count", mutate: func(o *GenerateOptions) { o.Count = 0 }},
		{name: "empty period", mutate: func(o *GenerateOptions) { o.To = o.From }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := generateOptions()
			tt.mutate(&opts)
			_, err := Generate(opts)
			require.Error(t, err)
		})
	}
}
