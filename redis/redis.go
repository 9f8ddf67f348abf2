package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CarolineNkan/safeher-sub001/api"
)

// Redis provides caching of recent stories in Redis.
type Redis struct {
	cli *redis.Client
}

// Connect connects to the Redis server and pings the server to ensure the
// connection is working.
func Connect(ctx context.Context, addr string) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{
		cli: cli,
	}, nil
}

const (
	storyPrefix = "stories"
	maxSize     = 10
)

// ListStories returns the cached stories sorted by creation time in
// descending order.
func (r *Redis) ListStories(ctx context.Context) ([]api.Story, error) {
	keys, err := r.cli.ZRevRangeByScore(ctx, storyPrefix, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", time.Now().UnixNano()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange: %w", err)
	}

	out := make([]api.Story, len(keys))
	for i, key := range keys {
		var s story
		if err := r.cli.HGetAll(ctx, key).Scan(&s); err != nil {
			return nil, fmt.Errorf("hgetall: %w", err)
		}
		out[i] = s.APIStory()
	}

	return out, nil
}

// InsertStory adds the story to Redis with stories:STORY_ID as the key and
// adds the key to a sorted set ordered by creation time.
func (r *Redis) InsertStory(ctx context.Context, s api.Story) error {
	m := fromAPI(s)

	err := r.cli.Watch(ctx, func(tx *redis.Tx) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			key := fmt.Sprintf("%s:%s", storyPrefix, m.ID)
			pipe.HSet(ctx, key, m)
			pipe.ZAdd(ctx, storyPrefix, redis.Z{
				Score:  float64(s.CreatedAt.UnixNano()),
				Member: key,
			})

			return nil
		})
		return err
	}, m.ID)

	if err != nil {
		return fmt.Errorf("redis insert story: %w", err)
	}

	// Keep the cache bounded by evicting the oldest entries.
	if err := r.evictOldest(ctx); err != nil {
		return fmt.Errorf("evict oldest: %w", err)
	}
	return nil
}

// BumpReaction increments the cached count of the given reaction kind. A
// story that is not cached is left alone; the database remains the source of
// truth.
func (r *Redis) BumpReaction(ctx context.Context, storyID, kind string) error {
	key := fmt.Sprintf("%s:%s", storyPrefix, storyID)
	exists, err := r.cli.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("exists: %w", err)
	}
	if exists == 0 {
		return nil
	}
	switch kind {
	case api.ReactionLike, api.ReactionHelpful, api.ReactionNoted:
	default:
		return fmt.Errorf("unknown reaction kind %q", kind)
	}
	if err := r.cli.HIncrBy(ctx, key, kind, 1).Err(); err != nil {
		return fmt.Errorf("hincrby: %w", err)
	}
	return nil
}

// UpdateMessage rewrites the cached message of a story after an owner edit. A
// story that is not cached is left alone.
func (r *Redis) UpdateMessage(ctx context.Context, storyID, message string) error {
	key := fmt.Sprintf("%s:%s", storyPrefix, storyID)
	exists, err := r.cli.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("exists: %w", err)
	}
	if exists == 0 {
		return nil
	}
	if err := r.cli.HSet(ctx, key, "message", message).Err(); err != nil {
		return fmt.Errorf("hset: %w", err)
	}
	return nil
}

// Delete removes a story from the cache. Removing both the hash and the
// sorted-set member keeps deleted stories out of cache-first listings.
func (r *Redis) Delete(ctx context.Context, storyID string) error {
	key := fmt.Sprintf("%s:%s", storyPrefix, storyID)
	if err := r.cli.ZRem(ctx, storyPrefix, key).Err(); err != nil {
		return fmt.Errorf("zrem: %w", err)
	}
	if err := r.cli.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del: %w", err)
	}
	return nil
}

func (r *Redis) evictOldest(ctx context.Context) error {
	keys, err := r.cli.ZRange(ctx, storyPrefix, 0, int64(-maxSize-1)).Result()
	if err != nil {
		return fmt.Errorf("zrange: %w", err)
	}

	for _, key := range keys {
		_ = r.cli.ZRem(ctx, storyPrefix, key).Err()
		_ = r.cli.Del(ctx, key).Err()
	}

	return nil
}
