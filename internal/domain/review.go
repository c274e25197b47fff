package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultEaseFactor is the ease assigned on first encounter of an item.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the floor below which ease never drops.
const MinEaseFactor = 1.3

// ReviewState is the scheduling record for one (learner, item) pair.
// It is created on first encounter, mutated only by grade events, and
// superseded rather than deleted. Stability and Difficulty are populated
// only when the deployment runs the richer FSRS model.
type ReviewState struct {
	UserID       uuid.UUID
	ItemID       uuid.UUID
	State        CardState
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
	Stability    float64
	Difficulty   float64
	Due          time.Time
	LastGrade    *ReviewGrade
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewReviewState returns the default state for a freshly encountered pair:
// ease 2.5, no repetitions, zero interval, due immediately.
func NewReviewState(userID, itemID uuid.UUID, now time.Time) ReviewState {
	return ReviewState{
		UserID:     userID,
		ItemID:     itemID,
		State:      CardStateNew,
		EaseFactor: DefaultEaseFactor,
		Due:        now,
	}
}

// IsDue reports whether the item is eligible for review at the given time.
func (s *ReviewState) IsDue(now time.Time) bool {
	if s.State == CardStateNew {
		return true
	}
	return !s.Due.After(now)
}

// ReviewSnapshot captures the scheduling state before a grade was applied.
// Stored on the review log so a grade event is fully reconstructible.
type ReviewSnapshot struct {
	State        CardState   `json:"state"`
	EaseFactor   float64     `json:"ease_factor"`
	IntervalDays int         `json:"interval_days"`
	Repetitions  int         `json:"repetitions"`
	Stability    float64     `json:"stability,omitempty"`
	Difficulty   float64     `json:"difficulty,omitempty"`
	Due          time.Time   `json:"due"`
	LastGrade    *ReviewGrade `json:"last_grade,omitempty"`
}

// ReviewLog records a single grade event. Append-only, write-once.
type ReviewLog struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ItemID     uuid.UUID
	Grade      ReviewGrade
	PrevState  *ReviewSnapshot
	DurationMs *int
	ReviewedAt time.Time
}

// Encounter records one exposure of a learner to an item, with the raw
// signals the client observed. Append-only, write-once.
type Encounter struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ItemID    uuid.UUID
	Signals   []string
	RawText   string
	LatencyMs *int
	HintsUsed *int
	CreatedAt time.Time
}

// GradeCounts holds per-grade review counters.
type GradeCounts struct {
	Again int
	Hard  int
	Good  int
	Easy  int
}

// ReviewStats holds aggregated review statistics for one learner,
// computed in SQL by the review log repository.
type ReviewStats struct {
	TotalReviews  int
	GradeCounts   GradeCounts
	AccuracyRate  float64
	ActiveDays    int
	AvgDurationMs *int
}
