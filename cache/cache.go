// Package cache is an optional redis read-through layer. Without a client
// every call is a miss and writes are no-ops, so callers never branch on it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"canteen_manager/logger"
	"canteen_manager/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	KeyMenuPrefix = "canteen:menu:"
	KeyNowServingPrefix = "canteen:now-serving:"

	MenuTTL       = 5 * time.Minute
	NowServingTTL = 10 * time.Second
)

var RDB *redis.Client

// Connect sets RDB when addr answers a ping. An empty addr disables caching.
func Connect(ctx context.Context, addr string) error {
	if addr == "" {
		RDB = nil
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		RDB = nil
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	RDB = client
	logger.WithModule("cache").WithField("addr", addr).Info("redis connected")
	return nil
}

func Close() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}

func MenuKey(category string) string {
	if category == "" {
		return KeyMenuPrefix + "all"
	}
	return KeyMenuPrefix + category
}

// NowServingKey is per calendar day of t, so a value cached just before
// midnight is never served for the next day.
func NowServingKey(t time.Time) string {
	return KeyNowServingPrefix + t.Format("2006-01-02")
}

// Get unmarshals key into dest and reports whether it was a hit.
func Get(ctx context.Context, key string, dest interface{}) bool {
	if RDB == nil {
		return false
	}
	val, err := RDB.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.WithModule("cache").WithError(err).WithField("key", key).Warn("cache read failed")
		}
		metrics.CacheMisses.Inc()
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		metrics.CacheMisses.Inc()
		return false
	}
	metrics.CacheHits.Inc()
	return true
}

func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if RDB == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := RDB.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.WithModule("cache").WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// InvalidateMenu drops every cached menu listing.
func InvalidateMenu(ctx context.Context) {
	if RDB == nil {
		return
	}
	iter := RDB.Scan(ctx, 0, KeyMenuPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.WithModule("cache").WithError(err).Warn("menu key scan failed")
	}
	if len(keys) > 0 {
		Del(ctx, keys...)
	}
}

func Del(ctx context.Context, keys ...string) {
	if RDB == nil {
		return
	}
	if err := RDB.Del(ctx, keys...).Err(); err != nil {
		logger.WithModule("cache").WithError(err).Warn("cache delete failed")
	}
}
