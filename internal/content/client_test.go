package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/studykit/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, retryAttempts int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.ContentConfig{
		BaseURL:          server.URL,
		APIKey:           "test-key",
		TimeoutSeconds:   5,
		MaxRetryAttempts: retryAttempts,
		BatchLookupLimit: 10,
	})
}

func TestClient_FindByIDs(t *testing.T) {
	t.Run("looks up flashcards by id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/flashcards/lookup", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var body lookupRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []string{"card-1", "card-2"}, body.IDs)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(flashcardLookupResponse{
				Flashcards: []flashcardPayload{
					{ID: "card-1", DeckID: "deck-1", OwnerID: "user-1", Front: "front", Back: "back"},
				},
			})
		}, 0)

		flashcards, err := client.FindByIDs(context.Background(), []string{"card-1", "card-2"})
		require.NoError(t, err)
		require.Len(t, flashcards, 1)
		assert.Equal(t, "card-1", flashcards[0].ID)
		assert.Equal(t, "deck-1", flashcards[0].DeckID)
		assert.Equal(t, "user-1", flashcards[0].OwnerID)
	})

	t.Run("looks up questions by id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/questions/lookup", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(questionLookupResponse{
				Questions: []questionPayload{
					{ID: "question-1", OwnerID: "user-1", Prompt: "what is", Answer: "that"},
				},
			})
		}, 0)

		questions, err := client.Questions().FindByIDs(context.Background(), []string{"question-1"})
		require.NoError(t, err)
		require.Len(t, questions, 1)
		assert.Equal(t, "question-1", questions[0].ID)
		assert.Equal(t, "what is", questions[0].Prompt)
	})

	t.Run("retries a server error until it clears", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(flashcardLookupResponse{})
		}, 2)

		_, err := client.FindByIDs(context.Background(), []string{"card-1"})
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("a client error is not retried", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}, 3)

		_, err := client.FindByIDs(context.Background(), []string{"card-1"})
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})
}
