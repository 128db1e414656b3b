// Package duequeue answers "what should this user study right now". The
// backing store cannot join review state to content, so the resolver reads the
// due page first, then hydrates content through the providers in fixed-size
// chunks and merges the results back in due order.
package duequeue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/at-ishikawa/studykit/internal/interaction"
	"github.com/at-ishikawa/studykit/internal/response"
	"github.com/at-ishikawa/studykit/internal/schedule"
)

// InteractionSource supplies the raw due interaction records.
type InteractionSource interface {
	DueRecords(ctx context.Context, userID string, deckID *string, limit int) ([]interaction.Record, error)
}

// Resolver hydrates due review state with content. Items whose content no
// longer exists or no longer belongs to the requesting user are dropped from
// the page, never surfaced as errors.
type Resolver struct {
	interactions     InteractionSource
	responses        response.Repository
	reviews          schedule.Repository
	flashcards       FlashcardProvider
	questions        QuestionProvider
	logger           *zap.Logger
	batchLookupLimit int
	now              func() time.Time
}

// NewResolver creates a new Resolver. batchLookupLimit is the store's maximum
// multi-key lookup width; every provider call stays within it.
func NewResolver(
	interactions InteractionSource,
	responses response.Repository,
	reviews schedule.Repository,
	flashcards FlashcardProvider,
	questions QuestionProvider,
	logger *zap.Logger,
	batchLookupLimit int,
) *Resolver {
	return &Resolver{
		interactions:     interactions,
		responses:        responses,
		reviews:          reviews,
		flashcards:       flashcards,
		questions:        questions,
		logger:           logger,
		batchLookupLimit: batchLookupLimit,
		now:              time.Now,
	}
}

// DueFlashcard pairs a due interaction record with its hydrated card.
type DueFlashcard struct {
	Record interaction.Record
	Card   Flashcard
}

// DueFlashcardsInput filters the flashcard due queue.
type DueFlashcardsInput struct {
	UserID string
	DeckID *string
	Limit  int
	// LeechesOnly restricts the page to items flagged as leeches.
	LeechesOnly bool
}

// GetDueFlashcards returns the user's due flashcards, most overdue first.
func (r *Resolver) GetDueFlashcards(ctx context.Context, input DueFlashcardsInput) ([]DueFlashcard, error) {
	records, err := r.interactions.DueRecords(ctx, input.UserID, input.DeckID, input.Limit)
	if err != nil {
		return nil, fmt.Errorf("interactions.DueRecords() > %w", err)
	}
	if input.LeechesOnly {
		filtered := records[:0]
		for _, record := range records {
			if record.IsLeech {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}
	if len(records) == 0 {
		return nil, nil
	}

	itemIDs := make([]string, 0, len(records))
	for _, record := range records {
		itemIDs = append(itemIDs, record.ItemID)
	}
	cards := map[string]Flashcard{}
	for _, ids := range chunk(itemIDs, r.batchLookupLimit) {
		page, err := r.flashcards.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("flashcards.FindByIDs() > %w", err)
		}
		for _, card := range page {
			cards[card.ID] = card
		}
	}

	due := make([]DueFlashcard, 0, len(records))
	for _, record := range records {
		card, ok := cards[record.ItemID]
		if !ok || card.OwnerID != input.UserID {
			r.logger.Debug("dropping due item without usable content",
				zap.String("user_id", input.UserID),
				zap.String("item_id", record.ItemID),
				zap.Bool("found", ok))
			continue
		}
		due = append(due, DueFlashcard{Record: record, Card: card})
	}
	return due, nil
}

// DueQuestionResponse pairs a response due today with its hydrated question.
type DueQuestionResponse struct {
	Response response.UserResponse
	Question Question
}

// DueQuestionPage is one page of the question due queue. NextCursor is empty
// on the last page.
type DueQuestionPage struct {
	Items      []DueQuestionResponse
	NextCursor string
}

// GetDueQuestionResponses returns the responses whose next review falls on
// the current calendar day, paginated by an opaque cursor.
func (r *Resolver) GetDueQuestionResponses(ctx context.Context, userID string, limit int, cursor string) (DueQuestionPage, error) {
	dayStart, dayEnd := schedule.DayBounds(r.now())
	query := response.DueQuery{UserID: userID, From: dayStart, To: dayEnd, Limit: limit}
	if cursor != "" {
		decoded, err := decodeCursor(cursor)
		if err != nil {
			return DueQuestionPage{}, err
		}
		query.Cursor = &response.Cursor{NextReviewDate: decoded.Time, ID: decoded.ID}
	}

	responses, err := r.responses.FindDue(ctx, query)
	if err != nil {
		return DueQuestionPage{}, fmt.Errorf("responses.FindDue() > %w", err)
	}

	var page DueQuestionPage
	if limit > 0 && len(responses) == limit {
		last := responses[len(responses)-1]
		page.NextCursor = encodeCursor(*last.NextReviewDate, last.ID)
	}
	if len(responses) == 0 {
		return page, nil
	}

	questionIDs := make([]string, 0, len(responses))
	for _, userResponse := range responses {
		questionIDs = append(questionIDs, userResponse.QuestionID)
	}
	questions := map[string]Question{}
	for _, ids := range chunk(questionIDs, r.batchLookupLimit) {
		found, err := r.questions.FindByIDs(ctx, ids)
		if err != nil {
			return DueQuestionPage{}, fmt.Errorf("questions.FindByIDs() > %w", err)
		}
		for _, question := range found {
			questions[question.ID] = question
		}
	}

	page.Items = make([]DueQuestionResponse, 0, len(responses))
	for _, userResponse := range responses {
		question, ok := questions[userResponse.QuestionID]
		if !ok || question.OwnerID != userID {
			r.logger.Debug("dropping due response without usable question",
				zap.String("user_id", userID),
				zap.String("question_id", userResponse.QuestionID),
				zap.Bool("found", ok))
			continue
		}
		page.Items = append(page.Items, DueQuestionResponse{Response: userResponse, Question: question})
	}
	return page, nil
}

// UpcomingPage is one page of upcoming programmed reviews.
type UpcomingPage struct {
	Items      []schedule.ProgrammedReview
	NextCursor string
}

// GetUpcomingProgrammedReviews returns the user's pending reviews scheduled
// within the next days, paginated by an opaque cursor.
func (r *Resolver) GetUpcomingProgrammedReviews(ctx context.Context, userID string, days, limit int, cursor string) (UpcomingPage, error) {
	now := r.now()
	status := schedule.StatusPending
	query := schedule.RangeQuery{
		UserID: userID,
		From:   now,
		To:     now.AddDate(0, 0, days),
		Status: &status,
		Limit:  limit,
	}
	if cursor != "" {
		decoded, err := decodeCursor(cursor)
		if err != nil {
			return UpcomingPage{}, err
		}
		query.Cursor = &schedule.Cursor{ScheduledDate: decoded.Time, ID: decoded.ID}
	}

	reviews, err := r.reviews.FindInRange(ctx, query)
	if err != nil {
		return UpcomingPage{}, fmt.Errorf("reviews.FindInRange() > %w", err)
	}

	page := UpcomingPage{Items: reviews}
	if limit > 0 && len(reviews) == limit {
		last := reviews[len(reviews)-1]
		page.NextCursor = encodeCursor(last.ScheduledDate, last.ID)
	}
	return page, nil
}

// GetTodayProgrammedReviews returns all reviews still pending on the current
// calendar day.
func (r *Resolver) GetTodayProgrammedReviews(ctx context.Context, userID string) ([]schedule.ProgrammedReview, error) {
	dayStart, dayEnd := schedule.DayBounds(r.now())
	status := schedule.StatusPending
	reviews, err := r.reviews.FindInRange(ctx, schedule.RangeQuery{
		UserID: userID,
		From:   dayStart,
		To:     dayEnd,
		Status: &status,
	})
	if err != nil {
		return nil, fmt.Errorf("reviews.FindInRange() > %w", err)
	}
	return reviews, nil
}

func chunk(ids []string, width int) [][]string {
	if width <= 0 {
		return [][]string{ids}
	}
	var chunks [][]string
	for len(ids) > width {
		chunks = append(chunks, ids[:width])
		ids = ids[width:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
