package interaction

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/at-ishikawa/studykit/internal/srs"
)

// Service owns all mutations of interaction records.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new Service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// RecordReviewInput is one review submission for a flashcard.
type RecordReviewInput struct {
	UserID           string
	ItemID           string
	DeckID           *string
	Quality          int
	StudyTimeSeconds int
	Notes            string
}

// GetOrCreate returns the existing record for the pair, or persists and
// returns a fresh default. Safe to call concurrently; the deterministic key
// makes the insert race benign.
func (s *Service) GetOrCreate(ctx context.Context, userID, itemID string, deckID *string) (*Record, error) {
	record, err := s.repo.Find(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("repo.Find() > %w", err)
	}
	if record != nil {
		return record, nil
	}

	if err := s.repo.CreateIfAbsent(ctx, NewRecord(userID, itemID, deckID, s.now())); err != nil {
		return nil, fmt.Errorf("repo.CreateIfAbsent() > %w", err)
	}

	// Re-read instead of returning the local default: a concurrent creator
	// may have won the insert.
	record, err = s.repo.Find(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("repo.Find() > %w", err)
	}
	return record, nil
}

// RecordReview advances the scheduling state by one review. The read, the
// algorithm step and the write happen in one transaction so two concurrent
// reviews of the same item cannot overwrite each other's update.
func (s *Service) RecordReview(ctx context.Context, input RecordReviewInput) (*Record, error) {
	if input.Quality < srs.MinQuality || input.Quality > srs.MaxQuality {
		return nil, srs.ErrInvalidQuality
	}

	if _, err := s.GetOrCreate(ctx, input.UserID, input.ItemID, input.DeckID); err != nil {
		return nil, fmt.Errorf("s.GetOrCreate() > %w", err)
	}

	now := s.now()
	updated, err := s.repo.UpdateAtomically(ctx, input.UserID, input.ItemID, func(record *Record) error {
		state, err := srs.Advance(record.State(), input.Quality, now)
		if err != nil {
			return err
		}
		record.ApplyState(state, input.Quality, now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repo.UpdateAtomically() > %w", err)
	}

	if input.StudyTimeSeconds > 0 || input.Notes != "" {
		s.logger.Debug("review metadata",
			zap.String("user_id", input.UserID),
			zap.String("item_id", input.ItemID),
			zap.Int("study_time_seconds", input.StudyTimeSeconds),
			zap.String("notes", input.Notes))
	}
	return updated, nil
}

// ResetProgress restores the default scheduling state, preserving createdAt.
func (s *Service) ResetProgress(ctx context.Context, userID, itemID string, deckID *string) (*Record, error) {
	if _, err := s.GetOrCreate(ctx, userID, itemID, deckID); err != nil {
		return nil, fmt.Errorf("s.GetOrCreate() > %w", err)
	}

	now := s.now()
	updated, err := s.repo.UpdateAtomically(ctx, userID, itemID, func(record *Record) error {
		fresh := NewRecord(userID, itemID, deckID, now)
		fresh.CreatedAt = record.CreatedAt
		*record = *fresh
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repo.UpdateAtomically() > %w", err)
	}
	return updated, nil
}

// PurgeItem drops every user's record of one item after the item itself is
// deleted on the content side.
func (s *Service) PurgeItem(ctx context.Context, itemID string) error {
	if err := s.repo.DeleteByItem(ctx, itemID); err != nil {
		return fmt.Errorf("repo.DeleteByItem() > %w", err)
	}
	s.logger.Info("purged interaction records", zap.String("item_id", itemID))
	return nil
}

// DueRecords returns raw due interaction records ordered by how overdue they
// are. Content hydration is the due-queue resolver's job.
func (s *Service) DueRecords(ctx context.Context, userID string, deckID *string, limit int) ([]Record, error) {
	records, err := s.repo.FindDue(ctx, userID, deckID, s.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("repo.FindDue() > %w", err)
	}
	return records, nil
}
