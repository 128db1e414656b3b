package interaction

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/at-ishikawa/studykit/internal/srs"
)

// fakeRepository is an in-memory Repository with the same atomicity contract
// as the database implementation: UpdateAtomically serializes on a lock.
type fakeRepository struct {
	mu      sync.Mutex
	records map[string]Record
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: map[string]Record{}}
}

func (f *fakeRepository) Find(_ context.Context, userID, itemID string) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[RecordKey(userID, itemID)]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (f *fakeRepository) CreateIfAbsent(_ context.Context, record *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[record.Key]; ok {
		return nil
	}
	f.records[record.Key] = *record
	return nil
}

func (f *fakeRepository) Update(_ context.Context, record *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.Key] = *record
	return nil
}

func (f *fakeRepository) UpdateAtomically(_ context.Context, userID, itemID string, apply func(record *Record) error) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := RecordKey(userID, itemID)
	record, ok := f.records[key]
	if !ok {
		return nil, fmt.Errorf("record %s not found", key)
	}
	if err := apply(&record); err != nil {
		return nil, err
	}
	f.records[key] = record
	return &record, nil
}

func (f *fakeRepository) FindDue(_ context.Context, userID string, deckID *string, dueBefore time.Time, limit int) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []Record
	for _, record := range f.records {
		if record.UserID != userID || record.NextReviewAt == nil || record.NextReviewAt.After(dueBefore) {
			continue
		}
		if deckID != nil && (record.DeckID == nil || *record.DeckID != *deckID) {
			continue
		}
		due = append(due, record)
	}
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *fakeRepository) DeleteByItem(_ context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, record := range f.records {
		if record.ItemID == itemID {
			delete(f.records, key)
		}
	}
	return nil
}

func newTestService(repo Repository) *Service {
	service := NewService(repo, zap.NewNop())
	service.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return service
}

func TestService_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newTestService(repo)

	first, err := service.GetOrCreate(ctx, "user-1", "card-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "user-1_card-1", first.Key)
	assert.Equal(t, srs.DefaultEaseFactor, first.EaseFactor)
	assert.Zero(t, first.IntervalDays)
	assert.Zero(t, first.Repetitions)
	assert.True(t, first.IsLearning)
	assert.Nil(t, first.NextReviewAt)

	// A second call with no review in between returns identical state.
	second, err := service.GetOrCreate(ctx, "user-1", "card-1", nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestService_RecordReview(t *testing.T) {
	ctx := context.Background()

	t.Run("advances through the success schedule", func(t *testing.T) {
		repo := newFakeRepository()
		service := newTestService(repo)
		input := RecordReviewInput{UserID: "user-1", ItemID: "card-1", Quality: 5}

		record, err := service.RecordReview(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, 1, record.Repetitions)
		assert.Equal(t, 1, record.IntervalDays)

		record, err = service.RecordReview(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, 2, record.Repetitions)
		assert.Equal(t, 6, record.IntervalDays)

		record, err = service.RecordReview(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, 3, record.Repetitions)
		assert.Equal(t, 17, record.IntervalDays)
		require.NotNil(t, record.LastReviewQuality)
		assert.Equal(t, 5, *record.LastReviewQuality)
		require.NotNil(t, record.NextReviewAt)
	})

	t.Run("creates the record on first touch", func(t *testing.T) {
		repo := newFakeRepository()
		service := newTestService(repo)

		record, err := service.RecordReview(ctx, RecordReviewInput{UserID: "user-1", ItemID: "new-card", Quality: 2})
		require.NoError(t, err)
		assert.Equal(t, 1, record.FailStreak)
		assert.Equal(t, 1, record.IntervalDays)
		assert.Zero(t, record.Repetitions)
	})

	t.Run("rejects quality out of range", func(t *testing.T) {
		repo := newFakeRepository()
		service := newTestService(repo)

		_, err := service.RecordReview(ctx, RecordReviewInput{UserID: "user-1", ItemID: "card-1", Quality: 6})
		require.ErrorIs(t, err, srs.ErrInvalidQuality)

		// Nothing was written.
		record, err := repo.Find(ctx, "user-1", "card-1")
		require.NoError(t, err)
		assert.Nil(t, record)
	})
}

func TestService_RecordReview_ConcurrentReviewsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newTestService(repo)

	_, err := service.GetOrCreate(ctx, "user-1", "card-1", nil)
	require.NoError(t, err)

	const reviewers = 2
	var wg sync.WaitGroup
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.RecordReview(ctx, RecordReviewInput{UserID: "user-1", ItemID: "card-1", Quality: 5})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The second transaction observed the first's result: both reviews count.
	record, err := repo.Find(ctx, "user-1", "card-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, reviewers, record.Repetitions)
	assert.Equal(t, 6, record.IntervalDays)
}

func TestService_ResetProgress(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newTestService(repo)

	created, err := service.GetOrCreate(ctx, "user-1", "card-1", nil)
	require.NoError(t, err)

	_, err = service.RecordReview(ctx, RecordReviewInput{UserID: "user-1", ItemID: "card-1", Quality: 5})
	require.NoError(t, err)

	reset, err := service.ResetProgress(ctx, "user-1", "card-1", nil)
	require.NoError(t, err)
	assert.Equal(t, srs.DefaultEaseFactor, reset.EaseFactor)
	assert.Zero(t, reset.IntervalDays)
	assert.Zero(t, reset.Repetitions)
	assert.Zero(t, reset.FailStreak)
	assert.True(t, reset.IsLearning)
	assert.Nil(t, reset.NextReviewAt)
	assert.Equal(t, created.CreatedAt, reset.CreatedAt)
}

func TestService_DueRecords(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newTestService(repo)

	// One overdue item, one scheduled far in the future.
	_, err := service.RecordReview(ctx, RecordReviewInput{UserID: "user-1", ItemID: "due-card", Quality: 2})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = service.RecordReview(ctx, RecordReviewInput{UserID: "user-1", ItemID: "future-card", Quality: 5})
		require.NoError(t, err)
	}

	// Move the clock past the failed card's one-day interval.
	service.now = func() time.Time {
		return time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	}

	due, err := service.DueRecords(ctx, "user-1", nil, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "due-card", due[0].ItemID)
}

func TestService_PurgeItem(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	service := newTestService(repo)

	_, err := service.GetOrCreate(ctx, "user-1", "card-1", nil)
	require.NoError(t, err)
	_, err = service.GetOrCreate(ctx, "user-2", "card-1", nil)
	require.NoError(t, err)
	_, err = service.GetOrCreate(ctx, "user-1", "card-2", nil)
	require.NoError(t, err)

	require.NoError(t, service.PurgeItem(ctx, "card-1"))

	gone, err := repo.Find(ctx, "user-1", "card-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
	gone, err = repo.Find(ctx, "user-2", "card-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
	kept, err := repo.Find(ctx, "user-1", "card-2")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
