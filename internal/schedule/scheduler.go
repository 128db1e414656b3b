package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/at-ishikawa/studykit/internal/apperr"
	"github.com/at-ishikawa/studykit/internal/srs"
)

// Scheduler manages the programmed-review state machine.
//
// Mutations are guarded by a pre-read of the current status rather than a
// transaction: reviews are only ever touched by their owner, so true races are
// not expected here. The transactional path lives in the interaction service.
type Scheduler struct {
	repo            Repository
	logger          *zap.Logger
	validate        *validator.Validate
	maxBatchReviews int
	now             func() time.Time
	newID           func() string
}

// NewScheduler creates a new Scheduler. maxBatchReviews caps how many reviews
// one batch request may generate.
func NewScheduler(repo Repository, logger *zap.Logger, maxBatchReviews int) *Scheduler {
	return &Scheduler{
		repo:            repo,
		logger:          logger,
		validate:        validator.New(),
		maxBatchReviews: maxBatchReviews,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// CreateInput describes a single programmed review to schedule.
type CreateInput struct {
	UserID                string      `validate:"required"`
	ContentID             string      `validate:"required"`
	ContentType           ContentType `validate:"required,oneof=FLASHCARD_DECK QUESTION"`
	Title                 string
	Description           *string
	ScheduledDate         time.Time `validate:"required"`
	ReminderEnabled       bool
	ReminderMinutesBefore int `validate:"gte=0,lte=1440"`
}

// CompleteInput carries the optional session results reported on completion.
type CompleteInput struct {
	Score            *float64 `validate:"omitempty,gte=0,lte=100"`
	TimeSpentSeconds *int     `validate:"omitempty,gte=0"`
	CardsReviewed    *int     `validate:"omitempty,gte=0"`
}

// BatchInput describes a recurrence rule to expand into programmed reviews.
type BatchInput struct {
	UserID                string         `validate:"required"`
	ContentID             string         `validate:"required"`
	ContentType           ContentType    `validate:"required,oneof=FLASHCARD_DECK QUESTION"`
	Title                 string
	Description           *string
	StartDate             time.Time      `validate:"required"`
	EndDate               time.Time      `validate:"required"`
	Frequency             Frequency      `validate:"required,oneof=daily weekly biweekly monthly"`
	DaysOfWeek            []time.Weekday `validate:"dive,gte=0,lte=6"`
	ReminderEnabled       bool
	ReminderMinutesBefore int `validate:"gte=0,lte=1440"`
}

// Create schedules one review for a strictly future date, rejecting a
// duplicate pending review for the same (user, content, calendar date).
func (s *Scheduler) Create(ctx context.Context, input CreateInput) (*ProgrammedReview, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.Validationf("%s", err)
	}
	if !input.ScheduledDate.After(s.now()) {
		return nil, apperr.Validationf("scheduled date %s must be in the future", input.ScheduledDate.Format(time.RFC3339))
	}

	conflict, err := s.repo.ExistsPendingOn(ctx, input.UserID, input.ContentID, input.ScheduledDate, "")
	if err != nil {
		return nil, fmt.Errorf("repo.ExistsPendingOn() > %w", err)
	}
	if conflict {
		return nil, fmt.Errorf("%w: a pending review for content %s already exists on %s",
			apperr.ErrConflict, input.ContentID, input.ScheduledDate.Format("2006-01-02"))
	}

	now := s.now()
	review := &ProgrammedReview{
		ID:                    s.newID(),
		UserID:                input.UserID,
		ContentID:             input.ContentID,
		ContentType:           input.ContentType,
		Title:                 input.Title,
		Description:           input.Description,
		ScheduledDate:         input.ScheduledDate,
		EaseFactor:            srs.DefaultEaseFactor,
		Status:                StatusPending,
		ReminderEnabled:       input.ReminderEnabled,
		ReminderMinutesBefore: input.ReminderMinutesBefore,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("repo.Create() > %w", err)
	}
	return review, nil
}

// Complete moves a pending review to COMPLETED with the reported results.
func (s *Scheduler) Complete(ctx context.Context, id, userID string, input CompleteInput) (*ProgrammedReview, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.Validationf("%s", err)
	}

	review, err := s.ownedPending(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	review.Status = StatusCompleted
	review.CompletedAt = &now
	review.Score = input.Score
	review.TimeSpentSeconds = input.TimeSpentSeconds
	review.CardsReviewed = input.CardsReviewed
	review.UpdatedAt = now
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("repo.Update() > %w", err)
	}
	return review, nil
}

// Skip moves a pending review to SKIPPED.
func (s *Scheduler) Skip(ctx context.Context, id, userID string) (*ProgrammedReview, error) {
	review, err := s.ownedPending(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	review.Status = StatusSkipped
	review.SkippedAt = &now
	review.UpdatedAt = now
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("repo.Update() > %w", err)
	}
	return review, nil
}

// Reschedule moves a pending review to a new, strictly future date. For a
// completed or skipped review the original stays untouched and a new pending
// review is created from its deck, title, description and reminder settings.
func (s *Scheduler) Reschedule(ctx context.Context, id, userID string, newDate time.Time) (*ProgrammedReview, error) {
	if !newDate.After(s.now()) {
		return nil, apperr.Validationf("new date %s must be in the future", newDate.Format(time.RFC3339))
	}

	review, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if review.Status.Terminal() {
		created, err := s.Create(ctx, CreateInput{
			UserID:                review.UserID,
			ContentID:             review.ContentID,
			ContentType:           review.ContentType,
			Title:                 review.Title,
			Description:           review.Description,
			ScheduledDate:         newDate,
			ReminderEnabled:       review.ReminderEnabled,
			ReminderMinutesBefore: review.ReminderMinutesBefore,
		})
		if err != nil {
			return nil, fmt.Errorf("s.Create() > %w", err)
		}
		return created, nil
	}

	conflict, err := s.repo.ExistsPendingOn(ctx, review.UserID, review.ContentID, newDate, review.ID)
	if err != nil {
		return nil, fmt.Errorf("repo.ExistsPendingOn() > %w", err)
	}
	if conflict {
		return nil, fmt.Errorf("%w: a pending review for content %s already exists on %s",
			apperr.ErrConflict, review.ContentID, newDate.Format("2006-01-02"))
	}

	review.ScheduledDate = newDate
	review.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("repo.Update() > %w", err)
	}
	return review, nil
}

// Advance applies one review of the given quality to a pending review's
// scheduling state and moves its date to the computed next review. Failures
// count as lapses. A completed or skipped review is history and cannot be
// advanced. This is the step the question path delegates to.
func (s *Scheduler) Advance(ctx context.Context, id, userID string, quality int) (*ProgrammedReview, error) {
	review, err := s.ownedPending(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	state, err := srs.Advance(srs.State{
		EaseFactor:   review.EaseFactor,
		IntervalDays: review.IntervalDays,
		Repetitions:  review.Repetitions,
	}, quality, now)
	if err != nil {
		return nil, err
	}

	// The computed date may land on a day that already holds another pending
	// review for the same content. The outcome still has to be recorded, so
	// the date slides forward to the next free day instead of failing.
	nextDate := state.NextReviewAt
	for {
		conflict, err := s.repo.ExistsPendingOn(ctx, review.UserID, review.ContentID, nextDate, review.ID)
		if err != nil {
			return nil, fmt.Errorf("repo.ExistsPendingOn() > %w", err)
		}
		if !conflict {
			break
		}
		nextDate = nextDate.AddDate(0, 0, 1)
	}

	if !srs.Passed(quality) {
		review.Lapses++
	}
	review.EaseFactor = state.EaseFactor
	review.IntervalDays = state.IntervalDays
	review.Repetitions = state.Repetitions
	review.ScheduledDate = nextDate
	review.Status = StatusPending
	review.LastReviewedAt = &now
	review.UpdatedAt = now
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("repo.Update() > %w", err)
	}
	return review, nil
}

// CreateBatch expands a recurrence rule and schedules one review per date.
// A date that conflicts with an existing pending review is skipped, not an
// error; the batch returns only the reviews actually created.
func (s *Scheduler) CreateBatch(ctx context.Context, input BatchInput) ([]*ProgrammedReview, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.Validationf("%s", err)
	}
	if !input.StartDate.After(s.now()) {
		return nil, apperr.Validationf("start date %s must be in the future", input.StartDate.Format(time.RFC3339))
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, apperr.Validationf("end date must be after start date")
	}
	if (input.Frequency == FrequencyWeekly || input.Frequency == FrequencyBiweekly) && len(input.DaysOfWeek) == 0 {
		return nil, apperr.Validationf("days of week are required for %s recurrence", input.Frequency)
	}

	dates := ExpandRecurrence(input.StartDate, input.EndDate, input.Frequency, input.DaysOfWeek)
	if len(dates) > s.maxBatchReviews {
		return nil, apperr.Validationf("recurrence expands to %d reviews, more than the maximum of %d",
			len(dates), s.maxBatchReviews)
	}

	var created []*ProgrammedReview
	for _, date := range dates {
		review, err := s.Create(ctx, CreateInput{
			UserID:                input.UserID,
			ContentID:             input.ContentID,
			ContentType:           input.ContentType,
			Title:                 input.Title,
			Description:           input.Description,
			ScheduledDate:         date,
			ReminderEnabled:       input.ReminderEnabled,
			ReminderMinutesBefore: input.ReminderMinutesBefore,
		})
		if errors.Is(err, apperr.ErrConflict) {
			s.logger.Warn("skipping conflicting batch date",
				zap.String("user_id", input.UserID),
				zap.String("content_id", input.ContentID),
				zap.Time("date", date))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("s.Create() > %w", err)
		}
		created = append(created, review)
	}
	return created, nil
}

// Stats summarizes a user's programmed reviews in a window. Counts are
// computed by scanning the filtered rows rather than kept incrementally.
type Stats struct {
	Pending          int
	Completed        int
	Skipped          int
	CompletionRate   float64
	AverageScore     float64
	TotalTimeSeconds int
}

func (s *Scheduler) Stats(ctx context.Context, userID string, from, to time.Time) (Stats, error) {
	reviews, err := s.repo.FindInRange(ctx, RangeQuery{UserID: userID, From: from, To: to})
	if err != nil {
		return Stats{}, fmt.Errorf("repo.FindInRange() > %w", err)
	}

	var stats Stats
	var scored int
	var scoreSum float64
	for _, review := range reviews {
		switch review.Status {
		case StatusPending:
			stats.Pending++
		case StatusCompleted:
			stats.Completed++
			if review.Score != nil {
				scored++
				scoreSum += *review.Score
			}
			if review.TimeSpentSeconds != nil {
				stats.TotalTimeSeconds += *review.TimeSpentSeconds
			}
		case StatusSkipped:
			stats.Skipped++
		}
	}
	if resolved := stats.Completed + stats.Skipped; resolved > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(resolved)
	}
	if scored > 0 {
		stats.AverageScore = scoreSum / float64(scored)
	}
	return stats, nil
}

// Delete removes a review the caller owns. Used by the question path when the
// response owning the review goes away.
func (s *Scheduler) Delete(ctx context.Context, id, userID string) error {
	review, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, review.ID); err != nil {
		return fmt.Errorf("repo.Delete() > %w", err)
	}
	return nil
}

// owned loads a review and checks the caller owns it.
func (s *Scheduler) owned(ctx context.Context, id, userID string) (*ProgrammedReview, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("repo.FindByID() > %w", err)
	}
	if review == nil {
		return nil, apperr.NotFoundf("programmed review %s", id)
	}
	if review.UserID != userID {
		return nil, apperr.ErrOwnership
	}
	return review, nil
}

func (s *Scheduler) ownedPending(ctx context.Context, id, userID string) (*ProgrammedReview, error) {
	review, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if review.Status != StatusPending {
		return nil, apperr.Validationf("programmed review %s is already %s", id, review.Status)
	}
	return review, nil
}
