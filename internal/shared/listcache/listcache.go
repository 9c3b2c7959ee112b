// Package listcache versions cached employee reads. Every mutation bumps a
// single generation counter; cache keys embed the generation they were
// computed under, so a write makes all older entries unreachable at once.
package listcache

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const GenerationKey = "employees:generation"

// Current returns the live generation. A missing counter is generation 0.
func Current(ctx context.Context, rdb *redis.Client) (int64, error) {
	gen, err := rdb.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return gen, nil
}

// Bump advances the generation and returns the new value.
func Bump(ctx context.Context, rdb *redis.Client) (int64, error) {
	return rdb.Incr(ctx, GenerationKey).Result()
}

// Key joins prefix, generation and the query parts. Parts are query-escaped
// so user search text cannot collide with the separator.
func Key(prefix string, gen int64, parts ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(gen, 10))
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(url.QueryEscape(p))
	}
	return b.String()
}
