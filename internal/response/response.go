// Package response stores a user's answers to questions and, for answers on a
// review schedule, keeps them linked to the programmed review that drives the
// schedule. The link is a stored id only; the review's existence is re-checked
// every time it is used.
package response

import (
	"time"
)

// UserResponse is one user's answer to a question, optionally carrying its own
// review schedule through a linked programmed review.
type UserResponse struct {
	ID                 string     `db:"id"`
	UserID             string     `db:"user_id"`
	QuestionID         string     `db:"question_id"`
	IsCorrect          bool       `db:"is_correct"`
	SelectedAnswer     *string    `db:"selected_answer"`
	ReviewCount        int        `db:"review_count"`
	IntervalDays       int        `db:"interval_days"`
	NextReviewDate     *time.Time `db:"next_review_date"`
	LastReviewedAt     *time.Time `db:"last_reviewed_at"`
	ProgrammedReviewID *string    `db:"programmed_review_id"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}
