package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
	ratingdomain "github.com/railzwaylabs/phonebill/internal/rating/domain"
)

// CallRecord is one call detail record as stored in call_records.
type CallRecord struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	OriginNumber      string       `gorm:"type:varchar(32);not null;index:idx_call_records_origin_started,priority:1"`
	DestinationNumber string       `gorm:"type:varchar(32);not null"`
	DurationSeconds   int64        `gorm:"not null"`
	StartedAt         time.Time    `gorm:"not null;index:idx_call_records_origin_started,priority:2"`
	CreatedAt         time.Time    `gorm:"not null"`
}

func (CallRecord) TableName() string { return "call_records" }

// Call converts the record into the shape the rating engine prices.
func (r CallRecord) Call() ratingdomain.Call {
	return ratingdomain.Call{
		Origin:      r.OriginNumber,
		Destination: r.DestinationNumber,
		Duration:    r.DurationSeconds,
		Timestamp:   r.StartedAt,
	}
}

func (r CallRecord) Validate() error {
	if err := ValidatePhoneNumber(r.OriginNumber); err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	if err := ValidatePhoneNumber(r.DestinationNumber); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if r.DurationSeconds < 0 {
		return fmt.Errorf("%w: negative duration %d", ErrInvalidRecord, r.DurationSeconds)
	}
	if r.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidRecord)
	}
	return nil
}

// Phone number format: +<country><number>, digits only after the plus sign.
var phoneNumberFormat = regexp.MustCompile(`^\+[0-9]{8,15}$`)

func ValidatePhoneNumber(number string) error {
	if !phoneNumberFormat.MatchString(number) {
		return fmt.Errorf("%w: %q should match %s", ErrInvalidPhoneNumber, number, phoneNumberFormat.String())
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC3339 and the common date-time forms found in call
// exports, including bare dates which resolve to midnight UTC.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid timestamp %q", ErrInvalidRecord, value)
}
