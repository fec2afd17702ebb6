package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ConnectRedis returns a client for addr, or nil when addr is empty or the
// server does not answer after a few attempts.
func ConnectRedis(addr string, logg *logrus.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	if logg == nil {
		logg = logrus.StandardLogger()
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err == nil {
			logg.WithField("addr", addr).Info("✅ Connected to Redis")
			return rdb
		}
		logg.WithError(err).WithField("attempt", i+1).Warn("Redis ping failed")
		time.Sleep(time.Second)
	}
	_ = rdb.Close()
	logg.WithField("addr", addr).Warn("Redis unavailable, falling back to in-process locking")
	return nil
}
