package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	ratingdomain "github.com/railzwaylabs/phonebill/internal/rating/domain"
)

var header = []string{"origin", "destination", "duration", "timestamp"}

// Prefixes used for synthetic international destinations.
var foreignPrefixes = []string{"+19", "+34", "+44", "+33", "+55", "+49"}

// GenerateOptions describes a synthetic calls file.
type GenerateOptions struct {
	Origin  string
	Friends []string
	Count   int
	From    time.Time
	To      time.Time
	// Seed makes the output reproducible; zero picks a random seed.
	Seed uint64
}

func (o GenerateOptions) validate() error {
	if err := callrecorddomain.ValidatePhoneNumber(o.Origin); err != nil {
		return err
	}
	for _, friend := range o.Friends {
		if err := callrecorddomain.ValidatePhoneNumber(friend); err != nil {
			return fmt.Errorf("friend: %w", err)
		}
	}
	if o.Count <= 0 {
		return errors.New("count must be positive")
	}
	if !o.From.Before(o.To) {
		return errors.New("from must be before to")
	}
	return nil
}

// Generate builds Count call records placed by Origin between From and To.
// Destinations mix same-prefix numbers, foreign numbers and, when given,
// friends.
func Generate(opts GenerateOptions) ([]callrecorddomain.CallRecord, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	faker := gofakeit.New(opts.Seed)
	local := ratingdomain.PhonePrefix(opts.Origin)
	foreign := slices.DeleteFunc(slices.Clone(foreignPrefixes), func(p string) bool { return p == local })
	pattern := strings.Repeat("#", len(opts.Origin)-len(local))

	records := make([]callrecorddomain.CallRecord, 0, opts.Count)
	for range opts.Count {
		var destination string
		switch n := faker.Number(0, 9); {
		case n < 2 && len(opts.Friends) > 0:
			destination = faker.RandomString(opts.Friends)
		case n < 6:
			destination = local + faker.Numerify(pattern)
		default:
			destination = faker.RandomString(foreign) + faker.Numerify(pattern)
		}

		records = append(records, callrecorddomain.CallRecord{
			OriginNumber:      opts.Origin,
			DestinationNumber: destination,
			DurationSeconds:   int64(faker.Number(1, 3600)),
			StartedAt:         faker.DateRange(opts.From, opts.To).UTC().Truncate(time.Second),
		})
	}
	slices.SortStableFunc(records, func(a, b callrecorddomain.CallRecord) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
	return records, nil
}

// Write encodes records in the format Parse reads.
func Write(w io.Writer, records []callrecorddomain.CallRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.OriginNumber,
			r.DestinationNumber,
			strconv.FormatInt(r.DurationSeconds, 10),
			r.StartedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
