package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/models"
)

func policyConfig() config.BotConfig {
	return config.BotConfig{
		MinPostScore:      5,
		MaxPostAgeHours:   12,
		ForbiddenKeywords: []string{"politics", "crypto"},
	}
}

func freshPost(now time.Time) models.Post {
	return models.Post{
		ID:        "p1",
		Channel:   "demo",
		Title:     "need a sleep fix",
		Body:      "any advice welcome",
		Score:     10,
		CreatedAt: now.Add(-time.Hour),
	}
}

func TestEvaluatePasses(t *testing.T) {
	now := time.Now()
	v := Evaluate(freshPost(now), policyConfig(), now)
	assert.True(t, v.Passed)
	assert.Empty(t, v.Reason)
}

func TestEvaluateScoreTooLow(t *testing.T) {
	now := time.Now()
	post := freshPost(now)
	post.Score = 3

	v := Evaluate(post, policyConfig(), now)
	assert.False(t, v.Passed)
	assert.Contains(t, v.Reason, "3")
	assert.Contains(t, v.Reason, "5")
}

func TestEvaluateTooOld(t *testing.T) {
	now := time.Now()
	post := freshPost(now)
	post.CreatedAt = now.Add(-13 * time.Hour)

	v := Evaluate(post, policyConfig(), now)
	assert.False(t, v.Passed)
	assert.Contains(t, v.Reason, "too old")
}

func TestEvaluateForbiddenKeyword(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		title string
		body  string
	}{
		{"in title", "thoughts on POLITICS today", ""},
		{"in body", "question", "I lost money on Crypto last week"},
		{"spanning substring", "cryptocurrency crash", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := freshPost(now)
			post.Title = tt.title
			post.Body = tt.body

			v := Evaluate(post, policyConfig(), now)
			assert.False(t, v.Passed)
			assert.Contains(t, v.Reason, "forbidden keyword")
		})
	}
}

func TestEvaluateAdultFlagged(t *testing.T) {
	now := time.Now()
	post := freshPost(now)
	post.AdultFlagged = true

	v := Evaluate(post, policyConfig(), now)
	assert.False(t, v.Passed)
	assert.Contains(t, v.Reason, "adult")
}

func TestEvaluateFirstFailingRuleWins(t *testing.T) {
	now := time.Now()

	// Fails every rule; the score reason must win.
	post := models.Post{
		Title:        "politics rant",
		Score:        0,
		CreatedAt:    now.Add(-48 * time.Hour),
		AdultFlagged: true,
	}

	v := Evaluate(post, policyConfig(), now)
	assert.False(t, v.Passed)
	assert.Contains(t, v.Reason, "score too low")

	// With score fixed, age is next.
	post.Score = 10
	v = Evaluate(post, policyConfig(), now)
	assert.Contains(t, v.Reason, "too old")

	// With age fixed, the keyword rule fires before the adult flag.
	post.CreatedAt = now.Add(-time.Hour)
	v = Evaluate(post, policyConfig(), now)
	assert.Contains(t, v.Reason, "forbidden keyword")
}

func TestEvaluateScoreRejectsRegardlessOfOtherFields(t *testing.T) {
	now := time.Now()
	post := freshPost(now)
	post.Score = 4

	v := Evaluate(post, policyConfig(), now)
	assert.False(t, v.Passed)
	assert.Contains(t, v.Reason, "score too low")
}
