package bot

import (
	"sync"
	"time"

	"github.com/gopost/promobot/internal/models"
)

// State is the shared mutable bot state. It is owned by one Bot
// instance and every access goes through its mutex.
type State struct {
	mu           sync.Mutex
	active       bool
	counters     models.DayCounters
	totalReplies int
	lastReplyAt  time.Time
}

// NewState creates an inactive state with zeroed counters.
func NewState() *State {
	return &State{}
}

// Activate marks the bot active. Returns false if it already was.
func (s *State) Activate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return false
	}
	s.active = true
	return true
}

// Deactivate marks the bot inactive. Returns false if it already was.
func (s *State) Deactivate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	s.active = false
	return true
}

// Active reports whether cycles should run.
func (s *State) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// RecordReply bumps the day and lifetime reply counters and the last
// reply timestamp.
func (s *State) RecordReply(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.RepliesPosted++
	s.totalReplies++
	s.lastReplyAt = at
}

// AddCycleCounts folds one cycle's analyzed/filtered/selected counts
// into the day counters. Replies are recorded individually through
// RecordReply as they happen.
func (s *State) AddCycleCounts(analyzed, filtered, selected int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.PostsAnalyzed += analyzed
	s.counters.PostsFiltered += filtered
	s.counters.PostsSelected += selected
}

// Counters returns a copy of the current day counters.
func (s *State) Counters() models.DayCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// ResetDayCounters zeroes all day-scoped counters atomically and
// returns their final values for snapshotting.
func (s *State) ResetDayCounters() models.DayCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	final := s.counters
	s.counters = models.DayCounters{}
	return final
}

// TotalReplies returns the lifetime reply count.
func (s *State) TotalReplies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalReplies
}

// LastReplyAt returns the time of the most recent successful reply,
// zero if none yet.
func (s *State) LastReplyAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReplyAt
}
