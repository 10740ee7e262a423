package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"todo_webapp/internal/domain"

	"github.com/redis/go-redis/v9"
)

const listKeyPrefix = "todos:list:"

// TodoCache caches per-owner todo lists in Redis. A nil *TodoCache is a
// valid no-op and disables caching.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list for ownerID, or nil on miss.
func (c *TodoCache) GetList(ctx context.Context, ownerID int64) ([]*domain.Todo, error) {
	b, err := c.rdb.Get(ctx, listKey(ownerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []*domain.Todo
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list for ownerID.
func (c *TodoCache) SetList(ctx context.Context, ownerID int64, list []*domain.Todo) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(ownerID), b, c.ttl).Err()
}

// Invalidate drops the cached list for ownerID after a write.
func (c *TodoCache) Invalidate(ctx context.Context, ownerID int64) error {
	return c.rdb.Del(ctx, listKey(ownerID)).Err()
}

func listKey(ownerID int64) string {
	return listKeyPrefix + strconv.FormatInt(ownerID, 10)
}
