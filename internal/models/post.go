package models

import "time"

// Post is a forum submission as seen by the bot. Posts are transient:
// they are fetched, evaluated and discarded within a single cycle.
type Post struct {
	ID           string    `json:"id"`
	Channel      string    `json:"channel"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Score        int       `json:"score"`
	CreatedAt    time.Time `json:"created_at"`
	AdultFlagged bool      `json:"adult_flagged"`
	Author       string    `json:"author"`
	Permalink    string    `json:"permalink"`
}

// Text returns the title and body joined for keyword scanning.
func (p Post) Text() string {
	return p.Title + " " + p.Body
}

// ReplySubmission is a composed reply ready for submission to a post.
type ReplySubmission struct {
	PostID    string    `json:"post_id"`
	Channel   string    `json:"channel"`
	Body      string    `json:"body"`
	ProductID int64     `json:"product_id"`
	Generated bool      `json:"generated"` // false when a template was used
	PostedAt  time.Time `json:"posted_at"`
}
