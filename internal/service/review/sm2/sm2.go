// Package sm2 implements the SM-2 style grade transition for review
// scheduling. Apply is a pure function: no clock reads, no I/O, and the
// caller's state value is never mutated.
package sm2

import (
	"fmt"
	"math"
	"time"

	"github.com/adaptivelang/srs-backend/internal/domain"
)

// Apply computes the next scheduling state for a grade event.
// Grades outside 1..4 are rejected, never clamped.
func Apply(state domain.ReviewState, grade domain.ReviewGrade, now time.Time) (domain.ReviewState, error) {
	if !grade.IsValid() {
		return domain.ReviewState{}, fmt.Errorf("%w: grade %d out of range 1..4", domain.ErrValidation, grade)
	}

	next := state

	if grade.IsLapse() {
		next.Repetitions = 0
		next.IntervalDays = 1
		if state.State == domain.CardStateNew {
			next.State = domain.CardStateLearning
		} else {
			next.State = domain.CardStateRelearning
		}
	} else {
		switch state.Repetitions {
		case 0:
			next.IntervalDays = 1
		case 1:
			next.IntervalDays = 3
		default:
			next.IntervalDays = roundHalfUp(float64(state.IntervalDays) * state.EaseFactor)
		}
		next.Repetitions = state.Repetitions + 1
		next.State = domain.CardStateReview
	}

	// Ease update applies on every grade, after the interval computation,
	// so the interval always uses the pre-grade ease.
	next.EaseFactor = nextEase(state.EaseFactor, grade)

	next.Due = now.Add(time.Duration(next.IntervalDays) * 24 * time.Hour)
	g := grade
	next.LastGrade = &g

	return next, nil
}

// nextEase applies the SM-2 ease formula on the 0..5 quality scale:
//
//	EF' = max(1.3, EF + 0.1 − (5−q)·(0.08 + (5−q)·0.02))
//
// Easy gains 0.1, Good is neutral, Hard loses 0.14, Again loses 0.8.
func nextEase(ease float64, grade domain.ReviewGrade) float64 {
	q := float64(grade.Quality())
	delta := 0.1 - (5-q)*(0.08+(5-q)*0.02)
	return math.Max(domain.MinEaseFactor, ease+delta)
}

// roundHalfUp rounds to the nearest integer with .5 going up, so the same
// (ease, interval) pair always yields the same next interval.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
