package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "assistant:"
	windowSize = 50
	windowTTL  = 24 * time.Hour
)

type redisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) Cache {
	return &redisCache{rdb: rdb}
}

func windowKey(sessionID string) string    { return keyPrefix + "history:" + sessionID }
func lastAgentKey(sessionID string) string { return keyPrefix + "last-agent:" + sessionID }

// PushMessage prepends a turn and trims the window. The TTL rides along so
// idle sessions age out of redis on their own.
func (c *redisCache) PushMessage(ctx context.Context, sessionID string, m Message) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	key := windowKey(sessionID)
	pipe := c.rdb.Pipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, windowSize-1)
	pipe.Expire(ctx, key, windowTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// Window returns the cached turns oldest first. An empty slice means a cold
// cache, not an empty conversation.
func (c *redisCache) Window(ctx context.Context, sessionID string) ([]Message, error) {
	items, err := c.rdb.LRange(ctx, windowKey(sessionID), 0, windowSize-1).Result()
	if err != nil {
		return nil, err
	}

	// list is newest-first, walk it backwards
	messages := make([]Message, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		var m Message
		if err := json.Unmarshal([]byte(items[i]), &m); err != nil {
			return nil, fmt.Errorf("unmarshal cached message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// Fill replaces the window with messages loaded from postgres (ascending).
func (c *redisCache) Fill(ctx context.Context, sessionID string, messages []Message) error {
	key := windowKey(sessionID)

	pipe := c.rdb.Pipeline()
	pipe.Del(ctx, key)
	for _, m := range messages {
		raw, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		pipe.LPush(ctx, key, raw)
	}
	pipe.LTrim(ctx, key, 0, windowSize-1)
	pipe.Expire(ctx, key, windowTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisCache) SetLastAgent(ctx context.Context, sessionID, agent string) error {
	return c.rdb.Set(ctx, lastAgentKey(sessionID), agent, windowTTL).Err()
}

func (c *redisCache) LastAgent(ctx context.Context, sessionID string) (string, error) {
	agent, err := c.rdb.Get(ctx, lastAgentKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return agent, err
}

func (c *redisCache) Clear(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, windowKey(sessionID), lastAgentKey(sessionID)).Err()
}
