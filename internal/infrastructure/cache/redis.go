package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects to a single node or, when addrs lists several
// comma-separated hosts, to a cluster. The idempotency store and the event
// channel only need the UniversalClient surface.
func OpenRedis(addrs string, db int) (redis.UniversalClient, error) {
	var list []string
	for _, a := range strings.Split(addrs, ",") {
		if a = strings.TrimSpace(a); a != "" {
			list = append(list, a)
		}
	}
	if len(list) == 0 {
		return nil, errors.New("redis: no address given")
	}
	r := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        list,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := Ping(context.Background(), r); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// Ping bounds a PING to five seconds; the health endpoint uses it too.
func Ping(ctx context.Context, r redis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
