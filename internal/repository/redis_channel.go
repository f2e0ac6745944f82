package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisChannel 把整份订单集合存在单个 redis key 下的远端通道实现。
// SET 即 last-write-wins，与汇合点的语义一致。
type RedisChannel struct {
	client *redis.Client
	key    string
}

// NewRedisChannel 创建 redis 通道，key 形如 "kavarna:active-orders"
func NewRedisChannel(client *redis.Client, key string) *RedisChannel {
	if key == "" { key = "kavarna:active-orders" }
	return &RedisChannel{client: client, key: key}
}

func (c *RedisChannel) Pull(ctx context.Context) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrChannelEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("redis pull: %w", err)
	}
	return data, nil
}

func (c *RedisChannel) Push(ctx context.Context, payload []byte) error {
	if err := c.client.Set(ctx, c.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis push: %w", err)
	}
	return nil
}
