package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Cursor is the decoded form of the opaque pagination cursor: the last seen
// (scheduled_date, id) pair, acting as an exclusive lower bound for keyset
// pagination.
type Cursor struct {
	ScheduledDate time.Time
	ID            string
}

// RangeQuery filters programmed reviews by user and scheduled-date window.
type RangeQuery struct {
	UserID string
	From   time.Time
	To     time.Time
	// Status, if non-nil, restricts to one lifecycle state.
	Status *Status
	// Limit caps the page size; zero means no cap.
	Limit int
	// Cursor, if non-nil, resumes after the given position.
	Cursor *Cursor
}

// Repository defines persistence operations for programmed reviews.
type Repository interface {
	Create(ctx context.Context, review *ProgrammedReview) error
	// FindByID returns the review, or nil if absent.
	FindByID(ctx context.Context, id string) (*ProgrammedReview, error)
	Update(ctx context.Context, review *ProgrammedReview) error
	Delete(ctx context.Context, id string) error
	// ExistsPendingOn reports whether a pending review exists for the same
	// (user, content, calendar day). excludeID, when non-empty, ignores that
	// review so a reschedule does not conflict with itself.
	ExistsPendingOn(ctx context.Context, userID, contentID string, day time.Time, excludeID string) (bool, error)
	// FindInRange returns reviews in the window ordered by scheduled date
	// then id, honoring the query's status filter, limit and cursor.
	FindInRange(ctx context.Context, query RangeQuery) ([]ProgrammedReview, error)
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

const reviewColumns = `id, user_id, content_id, content_type, title, description, scheduled_date,
	interval_days, ease_factor, repetitions, lapses, status, reminder_enabled,
	reminder_minutes_before, last_reviewed_at, completed_at, skipped_at, score,
	time_spent_seconds, cards_reviewed, created_at, updated_at`

func (r *DBRepository) Create(ctx context.Context, review *ProgrammedReview) error {
	if _, err := r.db.NamedExecContext(ctx,
		`INSERT INTO programmed_reviews (id, user_id, content_id, content_type, title, description,
			scheduled_date, interval_days, ease_factor, repetitions, lapses, status,
			reminder_enabled, reminder_minutes_before, last_reviewed_at, completed_at,
			skipped_at, score, time_spent_seconds, cards_reviewed, created_at, updated_at)
		VALUES (:id, :user_id, :content_id, :content_type, :title, :description,
			:scheduled_date, :interval_days, :ease_factor, :repetitions, :lapses, :status,
			:reminder_enabled, :reminder_minutes_before, :last_reviewed_at, :completed_at,
			:skipped_at, :score, :time_spent_seconds, :cards_reviewed, :created_at, :updated_at)`,
		review); err != nil {
		return fmt.Errorf("db.NamedExecContext(insert programmed_review) > %w", err)
	}
	return nil
}

func (r *DBRepository) FindByID(ctx context.Context, id string) (*ProgrammedReview, error) {
	var review ProgrammedReview
	err := r.db.GetContext(ctx, &review,
		"SELECT "+reviewColumns+" FROM programmed_reviews WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(programmed_review) > %w", err)
	}
	return &review, nil
}

func (r *DBRepository) Update(ctx context.Context, review *ProgrammedReview) error {
	if _, err := r.db.NamedExecContext(ctx,
		`UPDATE programmed_reviews SET
			scheduled_date = :scheduled_date,
			interval_days = :interval_days,
			ease_factor = :ease_factor,
			repetitions = :repetitions,
			lapses = :lapses,
			status = :status,
			reminder_enabled = :reminder_enabled,
			reminder_minutes_before = :reminder_minutes_before,
			last_reviewed_at = :last_reviewed_at,
			completed_at = :completed_at,
			skipped_at = :skipped_at,
			score = :score,
			time_spent_seconds = :time_spent_seconds,
			cards_reviewed = :cards_reviewed,
			updated_at = :updated_at
		WHERE id = :id`,
		review); err != nil {
		return fmt.Errorf("db.NamedExecContext(update programmed_review) > %w", err)
	}
	return nil
}

func (r *DBRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM programmed_reviews WHERE id = ?", id); err != nil {
		return fmt.Errorf("db.ExecContext(delete programmed_review) > %w", err)
	}
	return nil
}

func (r *DBRepository) ExistsPendingOn(ctx context.Context, userID, contentID string, day time.Time, excludeID string) (bool, error) {
	dayStart, dayEnd := DayBounds(day)
	query := `SELECT COUNT(*) FROM programmed_reviews
		WHERE user_id = ? AND content_id = ? AND status = ?
			AND scheduled_date >= ? AND scheduled_date < ?`
	args := []any{userID, contentID, StatusPending, dayStart, dayEnd}
	if excludeID != "" {
		query += " AND id != ?"
		args = append(args, excludeID)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("db.GetContext(count pending programmed_reviews) > %w", err)
	}
	return count > 0, nil
}

func (r *DBRepository) FindInRange(ctx context.Context, query RangeQuery) ([]ProgrammedReview, error) {
	q := "SELECT " + reviewColumns + ` FROM programmed_reviews
		WHERE user_id = ? AND scheduled_date >= ? AND scheduled_date < ?`
	args := []any{query.UserID, query.From, query.To}
	if query.Status != nil {
		q += " AND status = ?"
		args = append(args, *query.Status)
	}
	if query.Cursor != nil {
		q += " AND (scheduled_date > ? OR (scheduled_date = ? AND id > ?))"
		args = append(args, query.Cursor.ScheduledDate, query.Cursor.ScheduledDate, query.Cursor.ID)
	}
	q += " ORDER BY scheduled_date ASC, id ASC"
	if query.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, query.Limit)
	}

	var reviews []ProgrammedReview
	if err := r.db.SelectContext(ctx, &reviews, q, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(programmed_reviews in range) > %w", err)
	}
	return reviews, nil
}
