package duequeue

import (
	"context"
)

//go:generate mockgen -source=providers.go -destination=../mocks/duequeue/mock_providers.go -package=mock_duequeue

// Flashcard is the content-side view of a card, fetched from the content
// collaborator when hydrating a due page.
type Flashcard struct {
	ID      string
	DeckID  string
	OwnerID string
	Front   string
	Back    string
}

// Question is the content-side view of a question.
type Question struct {
	ID      string
	OwnerID string
	Prompt  string
	Answer  string
}

// FlashcardProvider fetches flashcards by id from the content collaborator.
// A call never receives more ids than the configured batch lookup limit;
// unknown ids are silently absent from the result.
type FlashcardProvider interface {
	FindByIDs(ctx context.Context, ids []string) ([]Flashcard, error)
}

// QuestionProvider fetches questions by id from the content collaborator,
// under the same batching contract as FlashcardProvider.
type QuestionProvider interface {
	FindByIDs(ctx context.Context, ids []string) ([]Question, error)
}
