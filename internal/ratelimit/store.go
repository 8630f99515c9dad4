package ratelimit

import (
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const defaultPrefix = "ratelimit"

// NewStore returns a Redis-backed limiter store, or an in-process one when rdb
// is nil.
func NewStore(rdb *redis.Client, prefix string) (limiter.Store, error) {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultPrefix
	}
	opts := limiter.StoreOptions{Prefix: prefix}
	if rdb == nil {
		return memory.NewStoreWithOptions(opts), nil
	}
	store, err := limiterredis.NewStoreWithOptions(rdb, opts)
	if err != nil {
		return nil, fmt.Errorf("ratelimit redis store: %w", err)
	}
	return store, nil
}

// ParseRate parses a formatted rate such as "10-M". An empty string disables
// limiting and yields a zero rate.
func ParseRate(formatted string) (limiter.Rate, error) {
	formatted = strings.TrimSpace(formatted)
	if formatted == "" || formatted == "0" {
		return limiter.Rate{}, nil
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("parse rate %q: %w", formatted, err)
	}
	return rate, nil
}
