package database

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Check probes one backing dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// PostgresCheck pings the pool behind db.
func PostgresCheck(db *gorm.DB) Check {
	return Check{Name: "postgres", Ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

// RedisCheck issues PING against client.
func RedisCheck(client *redis.Client) Check {
	return Check{Name: "redis", Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// NATSCheck reports whether conn is currently connected. Reconnects are
// handled by the client, so a reconnecting connection counts as down.
func NATSCheck(conn *nats.Conn) Check {
	return Check{Name: "nats", Ping: func(context.Context) error {
		if conn == nil || !conn.IsConnected() {
			return errors.New("nats not connected")
		}
		return nil
	}}
}
