package models

// DayCounters are the rolling counters for the current day. They reset
// at local midnight.
type DayCounters struct {
	PostsAnalyzed int `json:"posts_analyzed"`
	PostsFiltered int `json:"posts_filtered"`
	PostsSelected int `json:"posts_selected"`
	RepliesPosted int `json:"replies_posted"`
}

// DailyStats is a persisted end-of-day snapshot of the counters.
type DailyStats struct {
	Date          string `db:"date"           json:"date"` // YYYY-MM-DD
	PostsAnalyzed int    `db:"posts_analyzed" json:"posts_analyzed"`
	PostsFiltered int    `db:"posts_filtered" json:"posts_filtered"`
	PostsSelected int    `db:"posts_selected" json:"posts_selected"`
	RepliesPosted int    `db:"replies_posted" json:"replies_posted"`
}
