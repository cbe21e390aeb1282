package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/models"
)

// Tracker records bot activity in Redis. Recording is fire-and-forget:
// a metrics failure is logged and never disturbs the cycle.
type Tracker struct {
	client redis.UniversalClient
	keys   *RedisKeys
	logger logger.Logger
}

// NewTracker creates a new metrics tracker
func NewTracker(client redis.UniversalClient, log logger.Logger) *Tracker {
	return &Tracker{
		client: client,
		keys:   NewRedisKeys(KeyPrefixMetrics),
		logger: log,
	}
}

func (t *Tracker) increment(ctx context.Context, key, what string) {
	ttl := MetricsTTLDays * 24 * time.Hour

	pipe := t.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("failed to increment counter",
			logger.String("counter", what),
			logger.String("redis_key", key),
			logger.Error(err),
		)
	}
}

// RecordReply bumps the channel's reply counter and prepends the reply
// to the recent list.
func (t *Tracker) RecordReply(ctx context.Context, sub models.ReplySubmission) {
	t.increment(ctx, t.keys.Replies(sub.Channel), "replies")

	data, err := json.Marshal(RecentReply{
		PostID:    sub.PostID,
		Channel:   sub.Channel,
		Body:      sub.Body,
		ProductID: sub.ProductID,
		Generated: sub.Generated,
		PostedAt:  sub.PostedAt,
	})
	if err != nil {
		t.logger.Warn("failed to marshal recent reply", logger.Error(err))
		return
	}

	ttl := RecentRepliesTTLDays * 24 * time.Hour

	pipe := t.client.Pipeline()
	pipe.LPush(ctx, KeyRecentReplies, data)
	pipe.LTrim(ctx, KeyRecentReplies, 0, MaxRecentReplies-1)
	pipe.Expire(ctx, KeyRecentReplies, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("failed to record recent reply",
			logger.String("post_id", sub.PostID),
			logger.String("channel", sub.Channel),
			logger.Error(err),
		)
	}
}

// RecordSkip bumps the channel's skipped counter.
func (t *Tracker) RecordSkip(ctx context.Context, channel, reason string) {
	t.logger.Debug("post skipped",
		logger.String("channel", channel),
		logger.String("reason", reason),
	)
	t.increment(ctx, t.keys.Skipped(channel), "skipped")
}

// RecordFetchError bumps the channel's error counter.
func (t *Tracker) RecordFetchError(ctx context.Context, channel string) {
	t.increment(ctx, t.keys.Errors(channel), "errors")
}

// GetStats returns aggregated statistics for the given channels using
// one pipelined read.
func (t *Tracker) GetStats(ctx context.Context, channels []string) (*Stats, error) {
	pipe := t.client.Pipeline()

	replyCmds := make(map[string]*redis.StringCmd)
	skippedCmds := make(map[string]*redis.StringCmd)
	errorCmds := make(map[string]*redis.StringCmd)

	for _, channel := range channels {
		replyCmds[channel] = pipe.Get(ctx, t.keys.Replies(channel))
		skippedCmds[channel] = pipe.Get(ctx, t.keys.Skipped(channel))
		errorCmds[channel] = pipe.Get(ctx, t.keys.Errors(channel))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("execute pipeline: %w", err)
	}

	stats := &Stats{
		Channels: make([]ChannelStats, 0, len(channels)),
	}

	for _, channel := range channels {
		cs := ChannelStats{Name: channel}

		// Missing keys count as zero.
		if v, err := replyCmds[channel].Int64(); err == nil {
			cs.Replies = v
			stats.TotalReplies += v
		}
		if v, err := skippedCmds[channel].Int64(); err == nil {
			cs.Skipped = v
			stats.TotalSkipped += v
		}
		if v, err := errorCmds[channel].Int64(); err == nil {
			cs.Errors = v
			stats.TotalErrors += v
		}

		stats.Channels = append(stats.Channels, cs)
	}

	return stats, nil
}

// GetRecentReplies returns the newest replies, most recent first.
func (t *Tracker) GetRecentReplies(ctx context.Context, limit int) ([]RecentReply, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > MaxRecentReplies {
		limit = MaxRecentReplies
	}

	results, err := t.client.LRange(ctx, KeyRecentReplies, 0, int64(limit-1)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []RecentReply{}, nil
		}
		return nil, fmt.Errorf("get recent replies: %w", err)
	}

	replies := make([]RecentReply, 0, len(results))
	for _, result := range results {
		var reply RecentReply
		if unmarshalErr := json.Unmarshal([]byte(result), &reply); unmarshalErr != nil {
			t.logger.Warn("failed to unmarshal recent reply", logger.Error(unmarshalErr))
			continue
		}
		replies = append(replies, reply)
	}

	return replies, nil
}
