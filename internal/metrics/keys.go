package metrics

import "fmt"

const (
	// KeyPrefixMetrics is the prefix for all metrics keys
	KeyPrefixMetrics = "promobot:metrics"
	// KeyPrefixReplies is the prefix for reply counters
	KeyPrefixReplies = "replies"
	// KeyPrefixSkipped is the prefix for skipped-post counters
	KeyPrefixSkipped = "skipped"
	// KeyPrefixErrors is the prefix for fetch-error counters
	KeyPrefixErrors = "errors"
	// KeyRecentReplies is the Redis key for the recent replies list
	KeyRecentReplies = "promobot:metrics:recent:replies"
	// MaxRecentReplies is the maximum number of recent replies to keep
	MaxRecentReplies = 100
	// MetricsTTLDays is the TTL in days for metrics counters
	MetricsTTLDays = 30
	// RecentRepliesTTLDays is the TTL in days for the recent replies list
	RecentRepliesTTLDays = 7
)

// RedisKeys provides methods to build Redis keys consistently
type RedisKeys struct {
	prefix string
}

// NewRedisKeys creates a new RedisKeys instance
func NewRedisKeys(prefix string) *RedisKeys {
	return &RedisKeys{prefix: prefix}
}

// Replies returns the Redis key for the reply counter for a channel
func (k *RedisKeys) Replies(channel string) string {
	return fmt.Sprintf("%s:%s:%s", k.prefix, KeyPrefixReplies, channel)
}

// Skipped returns the Redis key for the skipped counter for a channel
func (k *RedisKeys) Skipped(channel string) string {
	return fmt.Sprintf("%s:%s:%s", k.prefix, KeyPrefixSkipped, channel)
}

// Errors returns the Redis key for the error counter for a channel
func (k *RedisKeys) Errors(channel string) string {
	return fmt.Sprintf("%s:%s:%s", k.prefix, KeyPrefixErrors, channel)
}
