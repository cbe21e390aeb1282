// Package dedup tracks which posts already received a reply so restarts
// and overlapping channels never produce duplicates.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gopost/promobot/internal/logger"
)

const scanBatchSize = 100

// Tracker records replied post IDs in Redis with a TTL.
type Tracker struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewTracker(client *redis.Client, ttl time.Duration, log logger.Logger) *Tracker {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Tracker{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (t *Tracker) key(postID string) string {
	return fmt.Sprintf("promobot:replied:post:%s", postID)
}

// HasReplied reports whether a reply to the post was already recorded.
// Redis errors are logged and treated as "not replied" so an outage
// never stalls the bot.
func (t *Tracker) HasReplied(ctx context.Context, postID string) bool {
	exists, err := t.client.Exists(ctx, t.key(postID)).Result()
	if err != nil {
		t.logger.Error("redis error checking replied post",
			logger.String("post_id", postID),
			logger.Error(err),
		)
		return false
	}
	return exists == 1
}

// MarkReplied records a successful reply to the post.
func (t *Tracker) MarkReplied(ctx context.Context, postID string) error {
	if err := t.client.Set(ctx, t.key(postID), "1", t.ttl).Err(); err != nil {
		t.logger.Error("redis error marking replied post",
			logger.String("post_id", postID),
			logger.Error(err),
		)
		return err
	}
	t.logger.Debug("post marked as replied",
		logger.String("post_id", postID),
		logger.Duration("ttl", t.ttl),
	)
	return nil
}

// Clear removes a single post from the replied cache.
func (t *Tracker) Clear(ctx context.Context, postID string) error {
	return t.client.Del(ctx, t.key(postID)).Err()
}

// FlushAll removes every replied-post key. SCAN keeps this scoped to
// the tracker's keys instead of flushing the whole database.
func (t *Tracker) FlushAll(ctx context.Context) error {
	pattern := t.key("*")
	var cursor uint64
	var deletedCount int

	for {
		keys, next, err := t.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("scan keys: %w", err)
		}
		if len(keys) > 0 {
			deleted, delErr := t.client.Del(ctx, keys...).Result()
			if delErr != nil {
				return fmt.Errorf("delete keys: %w", delErr)
			}
			deletedCount += int(deleted)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	t.logger.Info("replied-post cache flushed", logger.Int("keys_deleted", deletedCount))
	return nil
}
