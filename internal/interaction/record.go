// Package interaction tracks per-user, per-item spaced-repetition state.
//
// One record exists per (user, item) pair, keyed deterministically so the
// record can be fetched or created without a secondary index. Records are
// created lazily on first touch and mutated only through the Service.
package interaction

import (
	"time"

	"github.com/at-ishikawa/studykit/internal/srs"
)

// Record is the spaced-repetition state of one studied item for one user.
type Record struct {
	Key               string     `db:"record_key"`
	UserID            string     `db:"user_id"`
	ItemID            string     `db:"item_id"`
	DeckID            *string    `db:"deck_id"`
	EaseFactor        float64    `db:"ease_factor"`
	IntervalDays      int        `db:"interval_days"`
	Repetitions       int        `db:"repetitions"`
	FailStreak        int        `db:"fail_streak"`
	IsLeech           bool       `db:"is_leech"`
	IsLearning        bool       `db:"is_learning"`
	LastReviewedAt    *time.Time `db:"last_reviewed_at"`
	NextReviewAt      *time.Time `db:"next_review_at"`
	LastReviewQuality *int       `db:"last_review_quality"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// RecordKey builds the deterministic identity key for a (user, item) pair.
func RecordKey(userID, itemID string) string {
	return userID + "_" + itemID
}

// NewRecord returns the default state of a never-reviewed item.
// IntervalDays stays 0 until the first review.
func NewRecord(userID, itemID string, deckID *string, now time.Time) *Record {
	return &Record{
		Key:        RecordKey(userID, itemID),
		UserID:     userID,
		ItemID:     itemID,
		DeckID:     deckID,
		EaseFactor: srs.DefaultEaseFactor,
		IsLearning: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// State extracts the scheduling state for the algorithm.
func (r *Record) State() srs.State {
	state := srs.State{
		EaseFactor:   r.EaseFactor,
		IntervalDays: r.IntervalDays,
		Repetitions:  r.Repetitions,
		FailStreak:   r.FailStreak,
		IsLeech:      r.IsLeech,
		IsLearning:   r.IsLearning,
	}
	if r.NextReviewAt != nil {
		state.NextReviewAt = *r.NextReviewAt
	}
	return state
}

// ApplyState writes the advanced scheduling state back onto the record.
func (r *Record) ApplyState(state srs.State, quality int, reviewedAt time.Time) {
	r.EaseFactor = state.EaseFactor
	r.IntervalDays = state.IntervalDays
	r.Repetitions = state.Repetitions
	r.FailStreak = state.FailStreak
	r.IsLeech = state.IsLeech
	r.IsLearning = state.IsLearning
	nextReviewAt := state.NextReviewAt
	r.NextReviewAt = &nextReviewAt
	r.LastReviewedAt = &reviewedAt
	r.LastReviewQuality = &quality
	r.UpdatedAt = reviewedAt
}
