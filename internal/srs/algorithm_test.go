package srs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/studykit/internal/apperr"
)

func TestAdvance(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		state   State
		quality int
		want    State
		wantErr error
	}{
		{
			name:    "first successful review",
			state:   NewState(),
			quality: 5,
			want: State{
				EaseFactor:   2.6,
				IntervalDays: 1,
				Repetitions:  1,
				IsLearning:   false,
				NextReviewAt: now.AddDate(0, 0, 1),
			},
		},
		{
			name: "second successful review",
			state: State{
				EaseFactor:   2.6,
				IntervalDays: 1,
				Repetitions:  1,
			},
			quality: 5,
			want: State{
				EaseFactor:   2.7,
				IntervalDays: 6,
				Repetitions:  2,
				IsLearning:   false,
				NextReviewAt: now.AddDate(0, 0, 6),
			},
		},
		{
			name: "quality 4 with ease factor 2.5 leaves it unchanged",
			state: State{
				EaseFactor:   2.5,
				IntervalDays: 6,
				Repetitions:  2,
			},
			quality: 4,
			want: State{
				EaseFactor:   2.5,
				IntervalDays: 15,
				Repetitions:  3,
				IsLearning:   false,
				NextReviewAt: now.AddDate(0, 0, 15),
			},
		},
		{
			name: "failure resets repetitions and interval",
			state: State{
				EaseFactor:   2.5,
				IntervalDays: 120,
				Repetitions:  7,
			},
			quality: 1,
			want: State{
				EaseFactor:   2.5,
				IntervalDays: 1,
				Repetitions:  0,
				FailStreak:   1,
				IsLearning:   true,
				NextReviewAt: now.AddDate(0, 0, 1),
			},
		},
		{
			name: "correct but hesitant answer keeps the item learning",
			state: State{
				EaseFactor:   2.5,
				IntervalDays: 1,
				Repetitions:  1,
			},
			quality: 3,
			want: State{
				EaseFactor:   2.36,
				IntervalDays: 6,
				Repetitions:  2,
				IsLearning:   true,
				NextReviewAt: now.AddDate(0, 0, 6),
			},
		},
		{
			name: "eighth consecutive failure flags a leech",
			state: State{
				EaseFactor: 1.3,
				FailStreak: 7,
			},
			quality: 0,
			want: State{
				EaseFactor:   1.3,
				IntervalDays: 1,
				FailStreak:   8,
				IsLeech:      true,
				IsLearning:   true,
				NextReviewAt: now.AddDate(0, 0, 1),
			},
		},
		{
			name: "success clears the leech flag and fail streak",
			state: State{
				EaseFactor: 1.3,
				FailStreak: 9,
				IsLeech:    true,
			},
			quality: 4,
			want: State{
				EaseFactor:   1.3,
				IntervalDays: 1,
				Repetitions:  1,
				IsLearning:   false,
				NextReviewAt: now.AddDate(0, 0, 1),
			},
		},
		{
			name: "interval is capped at one year",
			state: State{
				EaseFactor:   2.5,
				IntervalDays: 300,
				Repetitions:  10,
			},
			quality: 5,
			want: State{
				EaseFactor:   2.6,
				IntervalDays: MaxIntervalDays,
				Repetitions:  11,
				IsLearning:   false,
				NextReviewAt: now.AddDate(0, 0, MaxIntervalDays),
			},
		},
		{
			name:    "quality below range",
			state:   NewState(),
			quality: -1,
			wantErr: ErrInvalidQuality,
		},
		{
			name:    "quality above range",
			state:   NewState(),
			quality: 6,
			wantErr: ErrInvalidQuality,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Advance(tt.state, tt.quality, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, errors.Is(err, apperr.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.EaseFactor, got.EaseFactor, 1e-9)
			got.EaseFactor = tt.want.EaseFactor
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvance_SuccessSequence(t *testing.T) {
	// Three perfect reviews on a fresh item walk the 1, 6, round(6*EF) schedule.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := NewState()

	state, err := Advance(state, 5, now)
	require.NoError(t, err)
	assert.Equal(t, 1, state.IntervalDays)
	assert.Equal(t, 1, state.Repetitions)

	state, err = Advance(state, 5, now)
	require.NoError(t, err)
	assert.Equal(t, 6, state.IntervalDays)
	assert.Equal(t, 2, state.Repetitions)

	state, err = Advance(state, 5, now)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Repetitions)
	assert.Equal(t, 17, state.IntervalDays) // round(6 * 2.8)
}

func TestAdvance_EaseFactorNeverBelowFloor(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := NewState()

	// Alternate failing and barely-passing answers for a long stretch;
	// each pass lowers the ease factor by 0.14 until the floor holds it.
	for i := 0; i < 200; i++ {
		var err error
		state, err = Advance(state, passThreshold*(i%2), now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, state.EaseFactor, MinEaseFactor)
		assert.GreaterOrEqual(t, state.IntervalDays, MinIntervalDays)
		assert.LessOrEqual(t, state.IntervalDays, MaxIntervalDays)
	}
}

func TestAdvance_FailStreakAndLeechLifecycle(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := NewState()

	for i := 1; i <= LeechThreshold; i++ {
		var err error
		state, err = Advance(state, 0, now)
		require.NoError(t, err)
		assert.Equal(t, i, state.FailStreak)
		assert.Equal(t, i >= LeechThreshold, state.IsLeech, "failStreak=%d", i)
	}

	state, err := Advance(state, 3, now)
	require.NoError(t, err)
	assert.Zero(t, state.FailStreak)
	assert.False(t, state.IsLeech)
}
