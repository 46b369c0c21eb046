package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Connect parses a redis:// URL and verifies the server answers. The client
// holds session snapshots, the idle schedule and the event channel.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
