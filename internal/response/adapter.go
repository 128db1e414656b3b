package response

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/at-ishikawa/studykit/internal/apperr"
	"github.com/at-ishikawa/studykit/internal/schedule"
)

// Adapter bridges user responses onto the programmed-review scheduler. A
// response created with a next-review hint gets a backing review of type
// QUESTION; reviewing the response advances that review and copies the
// resulting schedule back onto the response.
type Adapter struct {
	responses Repository
	scheduler *schedule.Scheduler
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewAdapter creates a new Adapter.
func NewAdapter(responses Repository, scheduler *schedule.Scheduler, logger *zap.Logger) *Adapter {
	return &Adapter{
		responses: responses,
		scheduler: scheduler,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// CreateInput describes a new user response. NextReviewHint, when set, puts
// the response on a review schedule starting at that date.
type CreateInput struct {
	UserID         string
	QuestionID     string
	Title          string
	IsCorrect      bool
	SelectedAnswer *string
	NextReviewHint *time.Time
}

// Create stores a response. When the input carries a next-review hint, a
// pending QUESTION review is scheduled first and its id written onto the
// response as the link between the two.
func (a *Adapter) Create(ctx context.Context, input CreateInput) (*UserResponse, error) {
	if input.UserID == "" || input.QuestionID == "" {
		return nil, apperr.Validationf("user id and question id are required")
	}

	now := a.now()
	userResponse := &UserResponse{
		ID:             a.newID(),
		UserID:         input.UserID,
		QuestionID:     input.QuestionID,
		IsCorrect:      input.IsCorrect,
		SelectedAnswer: input.SelectedAnswer,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if input.NextReviewHint != nil {
		review, err := a.scheduler.Create(ctx, schedule.CreateInput{
			UserID:        input.UserID,
			ContentID:     input.QuestionID,
			ContentType:   schedule.ContentTypeQuestion,
			Title:         input.Title,
			ScheduledDate: *input.NextReviewHint,
		})
		if err != nil {
			return nil, fmt.Errorf("scheduler.Create() > %w", err)
		}
		userResponse.ProgrammedReviewID = &review.ID
		userResponse.NextReviewDate = input.NextReviewHint
	}

	if err := a.responses.Create(ctx, userResponse); err != nil {
		return nil, fmt.Errorf("responses.Create() > %w", err)
	}
	return userResponse, nil
}

// RecordReview applies one review of the given quality to the response's
// backing programmed review, then copies the advanced schedule back onto the
// response and bumps its review count.
func (a *Adapter) RecordReview(ctx context.Context, responseID, userID string, quality int) (*UserResponse, error) {
	userResponse, err := a.owned(ctx, responseID, userID)
	if err != nil {
		return nil, err
	}
	if userResponse.ProgrammedReviewID == nil {
		return nil, fmt.Errorf("%w: response %s has no linked programmed review", apperr.ErrScheduling, responseID)
	}

	review, err := a.scheduler.Advance(ctx, *userResponse.ProgrammedReviewID, userID, quality)
	if errors.Is(err, apperr.ErrNotFound) {
		// The link is a stored id only; the review can be gone by now.
		return nil, fmt.Errorf("%w: linked programmed review %s no longer exists",
			apperr.ErrScheduling, *userResponse.ProgrammedReviewID)
	}
	if err != nil {
		return nil, fmt.Errorf("scheduler.Advance() > %w", err)
	}

	userResponse.IntervalDays = review.IntervalDays
	userResponse.NextReviewDate = &review.ScheduledDate
	userResponse.LastReviewedAt = review.LastReviewedAt
	userResponse.ReviewCount++
	userResponse.UpdatedAt = a.now()
	if err := a.responses.Update(ctx, userResponse); err != nil {
		return nil, fmt.Errorf("responses.Update() > %w", err)
	}
	return userResponse, nil
}

// Delete removes a response. Its linked programmed review, if any, is deleted
// best effort: a failure there is logged and does not undo the deletion.
func (a *Adapter) Delete(ctx context.Context, responseID, userID string) error {
	userResponse, err := a.owned(ctx, responseID, userID)
	if err != nil {
		return err
	}

	if err := a.responses.Delete(ctx, responseID); err != nil {
		return fmt.Errorf("responses.Delete() > %w", err)
	}

	if userResponse.ProgrammedReviewID != nil {
		if err := a.scheduler.Delete(ctx, *userResponse.ProgrammedReviewID, userID); err != nil {
			a.logger.Warn("failed to delete linked programmed review",
				zap.String("response_id", responseID),
				zap.String("programmed_review_id", *userResponse.ProgrammedReviewID),
				zap.Error(err))
		}
	}
	return nil
}

func (a *Adapter) owned(ctx context.Context, responseID, userID string) (*UserResponse, error) {
	userResponse, err := a.responses.FindByID(ctx, responseID)
	if err != nil {
		return nil, fmt.Errorf("responses.FindByID() > %w", err)
	}
	if userResponse == nil {
		return nil, apperr.NotFoundf("user response %s", responseID)
	}
	if userResponse.UserID != userID {
		return nil, apperr.ErrOwnership
	}
	return userResponse, nil
}
