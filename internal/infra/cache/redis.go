package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const postsKey = "channel:recent_posts"

// RedisPosts реализует domain.PostCache через Redis.
type RedisPosts struct {
	client *redis.Client
}

// NewRedisPosts создаёт кэш постов.
func NewRedisPosts(client *redis.Client) *RedisPosts {
	return &RedisPosts{client: client}
}

// StorePosts сохраняет выборку постов с TTL.
func (c *RedisPosts) StorePosts(ctx context.Context, posts []string, ttl time.Duration) error {
	payload, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("marshal posts: %w", err)
	}
	if err := c.client.Set(ctx, postsKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set posts: %w", err)
	}
	return nil
}

// LoadPosts возвращает закэшированную выборку или (nil, nil) при промахе.
func (c *RedisPosts) LoadPosts(ctx context.Context) ([]string, error) {
	payload, err := c.client.Get(ctx, postsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get posts: %w", err)
	}
	var posts []string
	if err := json.Unmarshal(payload, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}
