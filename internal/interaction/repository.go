package interaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/studykit/internal/database"
)

// Repository defines persistence operations for interaction records.
type Repository interface {
	// Find returns the record for the (user, item) pair, or nil if absent.
	Find(ctx context.Context, userID, itemID string) (*Record, error)
	// CreateIfAbsent inserts the record unless one with the same key exists.
	// The identity key makes this safe to race.
	CreateIfAbsent(ctx context.Context, record *Record) error
	// Update overwrites all mutable fields of an existing record.
	Update(ctx context.Context, record *Record) error
	// UpdateAtomically runs apply on the current record inside a transaction
	// holding a row lock, then writes the result. Two concurrent calls for the
	// same key serialize; neither reads a stale state.
	UpdateAtomically(ctx context.Context, userID, itemID string, apply func(record *Record) error) (*Record, error)
	// FindDue returns records with nextReviewAt at or before dueBefore,
	// ordered by nextReviewAt ascending, capped at limit. A non-nil deckID
	// restricts to one deck.
	FindDue(ctx context.Context, userID string, deckID *string, dueBefore time.Time, limit int) ([]Record, error)
	// DeleteByItem removes all users' records of one item. Used only when the
	// parent item itself is deleted.
	DeleteByItem(ctx context.Context, itemID string) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

const recordColumns = `record_key, user_id, item_id, deck_id, ease_factor, interval_days,
	repetitions, fail_streak, is_leech, is_learning, last_reviewed_at, next_review_at,
	last_review_quality, created_at, updated_at`

func (r *DBRepository) Find(ctx context.Context, userID, itemID string) (*Record, error) {
	var record Record
	err := r.db.GetContext(ctx, &record,
		"SELECT "+recordColumns+" FROM interaction_records WHERE record_key = ?",
		RecordKey(userID, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(interaction_record) > %w", err)
	}
	return &record, nil
}

func (r *DBRepository) CreateIfAbsent(ctx context.Context, record *Record) error {
	if _, err := r.db.NamedExecContext(ctx,
		`INSERT IGNORE INTO interaction_records (record_key, user_id, item_id, deck_id,
			ease_factor, interval_days, repetitions, fail_streak, is_leech, is_learning,
			last_reviewed_at, next_review_at, last_review_quality, created_at, updated_at)
		VALUES (:record_key, :user_id, :item_id, :deck_id,
			:ease_factor, :interval_days, :repetitions, :fail_streak, :is_leech, :is_learning,
			:last_reviewed_at, :next_review_at, :last_review_quality, :created_at, :updated_at)`,
		record); err != nil {
		return fmt.Errorf("db.NamedExecContext(insert interaction_record) > %w", err)
	}
	return nil
}

func (r *DBRepository) Update(ctx context.Context, record *Record) error {
	if _, err := r.db.NamedExecContext(ctx, updateRecordQuery, record); err != nil {
		return fmt.Errorf("db.NamedExecContext(update interaction_record) > %w", err)
	}
	return nil
}

const updateRecordQuery = `UPDATE interaction_records SET
		ease_factor = :ease_factor,
		interval_days = :interval_days,
		repetitions = :repetitions,
		fail_streak = :fail_streak,
		is_leech = :is_leech,
		is_learning = :is_learning,
		last_reviewed_at = :last_reviewed_at,
		next_review_at = :next_review_at,
		last_review_quality = :last_review_quality,
		updated_at = :updated_at
	WHERE record_key = :record_key`

func (r *DBRepository) UpdateAtomically(ctx context.Context, userID, itemID string, apply func(record *Record) error) (*Record, error) {
	var updated *Record
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var record Record
		err := tx.GetContext(ctx, &record,
			"SELECT "+recordColumns+" FROM interaction_records WHERE record_key = ? FOR UPDATE",
			RecordKey(userID, itemID))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("interaction_record %s: %w", RecordKey(userID, itemID), sql.ErrNoRows)
		}
		if err != nil {
			return fmt.Errorf("tx.GetContext(interaction_record for update) > %w", err)
		}

		if err := apply(&record); err != nil {
			return err
		}

		if _, err := tx.NamedExecContext(ctx, updateRecordQuery, &record); err != nil {
			return fmt.Errorf("tx.NamedExecContext(update interaction_record) > %w", err)
		}
		updated = &record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *DBRepository) FindDue(ctx context.Context, userID string, deckID *string, dueBefore time.Time, limit int) ([]Record, error) {
	query := "SELECT " + recordColumns + ` FROM interaction_records
		WHERE user_id = ? AND next_review_at IS NOT NULL AND next_review_at <= ?`
	args := []any{userID, dueBefore}
	if deckID != nil {
		query += " AND deck_id = ?"
		args = append(args, *deckID)
	}
	query += " ORDER BY next_review_at ASC LIMIT ?"
	args = append(args, limit)

	var records []Record
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(due interaction_records) > %w", err)
	}
	return records, nil
}

func (r *DBRepository) DeleteByItem(ctx context.Context, itemID string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM interaction_records WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("db.ExecContext(delete interaction_records by item) > %w", err)
	}
	return nil
}
