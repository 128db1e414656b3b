// Package srs implements the spaced-repetition scheduling algorithm.
//
// The algorithm is a pure function over a small numeric state: no I/O, no
// clock access beyond the caller-supplied review time. Persistence and
// concurrency belong to the services that call it.
package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/at-ishikawa/studykit/internal/apperr"
)

const (
	// DefaultEaseFactor is the ease factor of a never-reviewed item.
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the floor below which the ease factor never falls.
	MinEaseFactor = 1.3
	// MaxIntervalDays caps the review interval at one year.
	MaxIntervalDays = 365
	// MinIntervalDays is the shortest interval after any review.
	MinIntervalDays = 1
	// LeechThreshold is the failure streak at which an item becomes a leech.
	LeechThreshold = 8

	// MinQuality and MaxQuality bound the accepted review quality.
	MinQuality = 0
	MaxQuality = 5

	// Quality 3 and above counts as a successful recall.
	passThreshold = 3
	// Quality below 4 keeps the item in the learning phase.
	learningThreshold = 4

	secondIntervalDays = 6
)

// ErrInvalidQuality is returned when a review quality is outside [0, 5].
var ErrInvalidQuality = fmt.Errorf("%w: quality must be between %d and %d", apperr.ErrValidation, MinQuality, MaxQuality)

// State is the scheduling state of one studied item.
type State struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
	FailStreak   int
	IsLeech      bool
	IsLearning   bool
	NextReviewAt time.Time
}

// NewState returns the state of a never-reviewed item. IntervalDays stays 0
// until the first review.
func NewState() State {
	return State{
		EaseFactor: DefaultEaseFactor,
		IsLearning: true,
	}
}

// Passed reports whether the quality counts as a successful recall.
func Passed(quality int) bool {
	return quality >= passThreshold
}

// Advance applies one review of the given quality at the given time and
// returns the new state. The input state is not mutated.
//
// Quality below 3 is a failure: repetitions reset, the interval drops to one
// day and the failure streak grows. Otherwise the interval grows on the
// SM-2 schedule (1 day, 6 days, then interval times ease factor) and the
// ease factor is adjusted by how confident the recall was.
func Advance(state State, quality int, now time.Time) (State, error) {
	if quality < MinQuality || quality > MaxQuality {
		return State{}, ErrInvalidQuality
	}

	next := state
	if next.EaseFactor == 0 {
		next.EaseFactor = DefaultEaseFactor
	}

	if quality < passThreshold {
		next.Repetitions = 0
		next.IntervalDays = MinIntervalDays
		next.FailStreak++
		next.IsLeech = next.FailStreak >= LeechThreshold
	} else {
		next.Repetitions++
		next.FailStreak = 0
		next.IsLeech = false
		next.EaseFactor = updateEaseFactor(next.EaseFactor, quality)

		switch next.Repetitions {
		case 1:
			next.IntervalDays = MinIntervalDays
		case 2:
			next.IntervalDays = secondIntervalDays
		default:
			next.IntervalDays = int(math.Round(float64(state.IntervalDays) * next.EaseFactor))
		}
	}

	next.IntervalDays = clampInterval(next.IntervalDays)
	next.IsLearning = quality < learningThreshold
	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)

	return next, nil
}

// updateEaseFactor applies the SM-2 delta for a successful recall:
// +0.1 for a perfect answer, shrinking as quality drops, floored at 1.3.
func updateEaseFactor(ef float64, quality int) float64 {
	q := float64(quality)
	ef += 0.1 - (5-q)*(0.08+(5-q)*0.02)
	return math.Max(ef, MinEaseFactor)
}

func clampInterval(days int) int {
	if days < MinIntervalDays {
		return MinIntervalDays
	}
	if days > MaxIntervalDays {
		return MaxIntervalDays
	}
	return days
}
