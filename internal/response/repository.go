package response

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Cursor is the decoded pagination cursor for due-response pages: the last
// seen (next_review_date, id) pair, an exclusive lower bound.
type Cursor struct {
	NextReviewDate time.Time
	ID             string
}

// DueQuery filters responses whose next review falls inside a window.
type DueQuery struct {
	UserID string
	From   time.Time
	To     time.Time
	// Limit caps the page size; zero means no cap.
	Limit int
	// Cursor, if non-nil, resumes after the given position.
	Cursor *Cursor
}

// Repository defines persistence operations for user responses.
type Repository interface {
	Create(ctx context.Context, response *UserResponse) error
	// FindByID returns the response, or nil if absent.
	FindByID(ctx context.Context, id string) (*UserResponse, error)
	Update(ctx context.Context, response *UserResponse) error
	Delete(ctx context.Context, id string) error
	// FindDue returns responses whose next_review_date falls in the window,
	// ordered by next review date then id.
	FindDue(ctx context.Context, query DueQuery) ([]UserResponse, error)
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

const responseColumns = `id, user_id, question_id, is_correct, selected_answer, review_count,
	interval_days, next_review_date, last_reviewed_at, programmed_review_id,
	created_at, updated_at`

func (r *DBRepository) Create(ctx context.Context, response *UserResponse) error {
	if _, err := r.db.NamedExecContext(ctx,
		`INSERT INTO user_responses (id, user_id, question_id, is_correct, selected_answer,
			review_count, interval_days, next_review_date, last_reviewed_at,
			programmed_review_id, created_at, updated_at)
		VALUES (:id, :user_id, :question_id, :is_correct, :selected_answer,
			:review_count, :interval_days, :next_review_date, :last_reviewed_at,
			:programmed_review_id, :created_at, :updated_at)`,
		response); err != nil {
		return fmt.Errorf("db.NamedExecContext(insert user_response) > %w", err)
	}
	return nil
}

func (r *DBRepository) FindByID(ctx context.Context, id string) (*UserResponse, error) {
	var response UserResponse
	err := r.db.GetContext(ctx, &response,
		"SELECT "+responseColumns+" FROM user_responses WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(user_response) > %w", err)
	}
	return &response, nil
}

func (r *DBRepository) Update(ctx context.Context, response *UserResponse) error {
	if _, err := r.db.NamedExecContext(ctx,
		`UPDATE user_responses SET
			is_correct = :is_correct,
			selected_answer = :selected_answer,
			review_count = :review_count,
			interval_days = :interval_days,
			next_review_date = :next_review_date,
			last_reviewed_at = :last_reviewed_at,
			programmed_review_id = :programmed_review_id,
			updated_at = :updated_at
		WHERE id = :id`,
		response); err != nil {
		return fmt.Errorf("db.NamedExecContext(update user_response) > %w", err)
	}
	return nil
}

func (r *DBRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM user_responses WHERE id = ?", id); err != nil {
		return fmt.Errorf("db.ExecContext(delete user_response) > %w", err)
	}
	return nil
}

func (r *DBRepository) FindDue(ctx context.Context, query DueQuery) ([]UserResponse, error) {
	q := "SELECT " + responseColumns + ` FROM user_responses
		WHERE user_id = ? AND next_review_date IS NOT NULL
			AND next_review_date >= ? AND next_review_date < ?`
	args := []any{query.UserID, query.From, query.To}
	if query.Cursor != nil {
		q += " AND (next_review_date > ? OR (next_review_date = ? AND id > ?))"
		args = append(args, query.Cursor.NextReviewDate, query.Cursor.NextReviewDate, query.Cursor.ID)
	}
	q += " ORDER BY next_review_date ASC, id ASC"
	if query.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, query.Limit)
	}

	var responses []UserResponse
	if err := r.db.SelectContext(ctx, &responses, q, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(due user_responses) > %w", err)
	}
	return responses, nil
}
