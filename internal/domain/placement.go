package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlacementSession is one adaptive placement attempt for a learner.
// It transitions IN_PROGRESS → COMPLETE exactly once; a complete session
// is immutable and rejects further answers.
type PlacementSession struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	Language            string
	Theta               float64
	ThetaSE             float64
	ItemsCompleted      int
	AdministeredItemIDs []uuid.UUID
	Status              SessionStatus
	FinalTheta          *float64
	FinalLevel          *CEFRLevel
	LowConfidence       bool
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsComplete reports whether the session reached a terminal state.
func (s *PlacementSession) IsComplete() bool {
	return s.Status == SessionStatusComplete
}

// WasAdministered reports whether the item was already shown in this session.
func (s *PlacementSession) WasAdministered(itemID uuid.UUID) bool {
	for _, id := range s.AdministeredItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// PlacementResponse is the write-once record of one answered placement item,
// including the ability estimate before and after the update.
type PlacementResponse struct {
	ID             uuid.UUID
	SessionID      uuid.UUID
	ItemID         uuid.UUID
	UserAnswer     string
	IsCorrect      bool
	ResponseTimeMs *int
	ThetaBefore    float64
	ThetaAfter     float64
	SEBefore       float64
	SEAfter        float64
	CreatedAt      time.Time
}

// PlacementResult is the final outcome of a completed session.
// LowConfidence marks degraded termination (catalog exhausted before the
// stopping rule was satisfied).
type PlacementResult struct {
	Level          CEFRLevel
	Theta          float64
	ConfidenceLow  float64
	ConfidenceHigh float64
	ItemsCompleted int
	LowConfidence  bool
}
