package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis dials the rate-limit store. Callers treat a failure as
// non-fatal, so this only reports whether Redis answered a ping within
// the timeout.
func ConnectRedis(addr, password string, db int, timeout time.Duration, logger *zap.SugaredLogger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Errorf("Redis unreachable within %s: %v", timeout, err)
		_ = rdb.Close()
		return nil, err
	}

	logger.Infof("Connected to Redis at %s", addr)
	return rdb, nil
}
