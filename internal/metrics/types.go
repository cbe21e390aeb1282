package metrics

import "time"

// RecentReply represents a recently posted reply
type RecentReply struct {
	PostID    string    `json:"post_id"`
	Channel   string    `json:"channel"`
	Body      string    `json:"body"`
	ProductID int64     `json:"product_id"`
	Generated bool      `json:"generated"`
	PostedAt  time.Time `json:"posted_at"`
}

// Stats represents aggregated statistics across channels
type Stats struct {
	TotalReplies int64          `json:"total_replies"`
	TotalSkipped int64          `json:"total_skipped"`
	TotalErrors  int64          `json:"total_errors"`
	Channels     []ChannelStats `json:"channels"`
}

// ChannelStats represents statistics for a single channel
type ChannelStats struct {
	Name    string `json:"name"`
	Replies int64  `json:"replies"`
	Skipped int64  `json:"skipped"`
	Errors  int64  `json:"errors"`
}
