// Package schedule manages programmed reviews: calendar-anchored review
// sessions with a small state machine (PENDING, COMPLETED, SKIPPED).
//
// A pending review can be completed, skipped or rescheduled in place.
// Completed and skipped reviews are history and never mutate back; rescheduling
// one clones it into a brand-new pending review.
package schedule

import (
	"time"
)

// Status is the lifecycle state of a programmed review.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusSkipped   Status = "SKIPPED"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// ContentType identifies what kind of content a review covers.
type ContentType string

const (
	ContentTypeFlashcardDeck ContentType = "FLASHCARD_DECK"
	ContentTypeQuestion      ContentType = "QUESTION"
)

// ProgrammedReview is one explicitly dated review session.
type ProgrammedReview struct {
	ID                    string      `db:"id"`
	UserID                string      `db:"user_id"`
	ContentID             string      `db:"content_id"`
	ContentType           ContentType `db:"content_type"`
	Title                 string      `db:"title"`
	Description           *string     `db:"description"`
	ScheduledDate         time.Time   `db:"scheduled_date"`
	IntervalDays          int         `db:"interval_days"`
	EaseFactor            float64     `db:"ease_factor"`
	Repetitions           int         `db:"repetitions"`
	Lapses                int         `db:"lapses"`
	Status                Status      `db:"status"`
	ReminderEnabled       bool        `db:"reminder_enabled"`
	ReminderMinutesBefore int         `db:"reminder_minutes_before"`
	LastReviewedAt        *time.Time  `db:"last_reviewed_at"`
	CompletedAt           *time.Time  `db:"completed_at"`
	SkippedAt             *time.Time  `db:"skipped_at"`
	Score                 *float64    `db:"score"`
	TimeSpentSeconds      *int        `db:"time_spent_seconds"`
	CardsReviewed         *int        `db:"cards_reviewed"`
	CreatedAt             time.Time   `db:"created_at"`
	UpdatedAt             time.Time   `db:"updated_at"`
}

// DayBounds returns the start of the calendar day of t and the start of the
// next day, in t's location. Conflict detection works on these bounds.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
