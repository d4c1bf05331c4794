package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	subscriberdomain "github.com/railzwaylabs/phonebill/internal/subscriber/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Lookup is a read-through redis cache in front of another Lookup. Redis
// errors never fail a request: the cache is skipped and the miss is served by
// the wrapped lookup.
type Lookup struct {
	next  subscriberdomain.Lookup
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

var _ subscriberdomain.Lookup = (*Lookup)(nil)

func New(next subscriberdomain.Lookup, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Lookup {
	return &Lookup{
		next:  next,
		redis: rdb,
		ttl:   ttl,
		log:   log.Named("subscriber.cache"),
	}
}

func key(phoneNumber string) string {
	return fmt.Sprintf("subscriber:%s", phoneNumber)
}

func (l *Lookup) Get(ctx context.Context, phoneNumber string) (subscriberdomain.Subscriber, error) {
	if sub, ok := l.load(ctx, phoneNumber); ok {
		return sub, nil
	}

	sub, err := l.next.Get(ctx, phoneNumber)
	if err != nil {
		return subscriberdomain.Subscriber{}, err
	}

	l.store(ctx, sub)
	return sub, nil
}

func (l *Lookup) load(ctx context.Context, phoneNumber string) (subscriberdomain.Subscriber, bool) {
	raw, err := l.redis.Get(ctx, key(phoneNumber)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			l.log.Warn("subscriber cache read failed", zap.String("phone_number", phoneNumber), zap.Error(err))
		}
		return subscriberdomain.Subscriber{}, false
	}

	var sub subscriberdomain.Subscriber
	if err := json.Unmarshal(raw, &sub); err != nil {
		l.log.Warn("subscriber cache entry corrupt", zap.String("phone_number", phoneNumber), zap.Error(err))
		return subscriberdomain.Subscriber{}, false
	}
	return sub, true
}

func (l *Lookup) store(ctx context.Context, sub subscriberdomain.Subscriber) {
	raw, err := json.Marshal(sub)
	if err != nil {
		return
	}
	if err := l.redis.Set(ctx, key(sub.PhoneNumber), raw, l.ttl).Err(); err != nil {
		l.log.Warn("subscriber cache write failed", zap.String("phone_number", sub.PhoneNumber), zap.Error(err))
	}
}
