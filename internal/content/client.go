// Package content talks to the external content service that owns decks,
// flashcards and questions. This side only ever reads: it looks content up by
// id when hydrating due pages and lets the content service decide what still
// exists and who owns it.
package content

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"

	"github.com/at-ishikawa/studykit/internal/config"
	"github.com/at-ishikawa/studykit/internal/duequeue"
)

// Client implements the due-queue content providers over the content
// service's REST API.
type Client struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
}

// NewClient creates a new Client from the content section of the
// configuration.
func NewClient(cfg config.ContentConfig) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(cfg.BaseURL)
	httpClient.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	httpClient.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &Client{
		httpClient:       httpClient,
		maxRetryAttempts: uint(cfg.MaxRetryAttempts),
	}
}

type lookupRequest struct {
	IDs []string `json:"ids"`
}

type flashcardLookupResponse struct {
	Flashcards []flashcardPayload `json:"flashcards"`
}

type flashcardPayload struct {
	ID      string `json:"id"`
	DeckID  string `json:"deck_id"`
	OwnerID string `json:"owner_id"`
	Front   string `json:"front"`
	Back    string `json:"back"`
}

type questionLookupResponse struct {
	Questions []questionPayload `json:"questions"`
}

type questionPayload struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Prompt  string `json:"prompt"`
	Answer  string `json:"answer"`
}

// FindByIDs implements duequeue.FlashcardProvider.
func (c *Client) FindByIDs(ctx context.Context, ids []string) ([]duequeue.Flashcard, error) {
	var body flashcardLookupResponse
	if err := c.lookup(ctx, "/flashcards/lookup", ids, &body); err != nil {
		return nil, fmt.Errorf("c.lookup(flashcards) > %w", err)
	}
	flashcards := make([]duequeue.Flashcard, 0, len(body.Flashcards))
	for _, payload := range body.Flashcards {
		flashcards = append(flashcards, duequeue.Flashcard{
			ID:      payload.ID,
			DeckID:  payload.DeckID,
			OwnerID: payload.OwnerID,
			Front:   payload.Front,
			Back:    payload.Back,
		})
	}
	return flashcards, nil
}

// Questions returns a view of the client implementing
// duequeue.QuestionProvider. Both providers share the one HTTP client.
func (c *Client) Questions() duequeue.QuestionProvider {
	return questionClient{c}
}

type questionClient struct {
	client *Client
}

func (q questionClient) FindByIDs(ctx context.Context, ids []string) ([]duequeue.Question, error) {
	var body questionLookupResponse
	if err := q.client.lookup(ctx, "/questions/lookup", ids, &body); err != nil {
		return nil, fmt.Errorf("c.lookup(questions) > %w", err)
	}
	questions := make([]duequeue.Question, 0, len(body.Questions))
	for _, payload := range body.Questions {
		questions = append(questions, duequeue.Question{
			ID:      payload.ID,
			OwnerID: payload.OwnerID,
			Prompt:  payload.Prompt,
			Answer:  payload.Answer,
		})
	}
	return questions, nil
}

func (c *Client) lookup(ctx context.Context, path string, ids []string, result any) error {
	return retry.Do(
		func() error {
			response, err := c.httpClient.R().
				SetContext(ctx).
				SetBody(lookupRequest{IDs: ids}).
				SetResult(result).
				Post(path)
			if err != nil {
				return fmt.Errorf("httpClient.R().Post > %w", err)
			}
			if response.StatusCode() != http.StatusOK {
				err := fmt.Errorf("response error %d: %s", response.StatusCode(), string(response.Body()))
				if !isRetryableStatus(response.StatusCode()) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
		retry.LastErrorOnly(true),
	)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode >= http.StatusInternalServerError || statusCode == http.StatusTooManyRequests
}
