package placement

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
	"github.com/adaptivelang/srs-backend/internal/service/placement/cat"
)

// AnswerResult is the outcome of processing one answer: either the next
// item to administer, or the final result when the session terminated.
type AnswerResult struct {
	Session   *domain.PlacementSession
	IsCorrect bool
	NextItem  *domain.Item
	Result    *domain.PlacementResult
}

// Answer scores the learner's answer to the current item, updates the
// ability estimate and either advances the session or terminates it.
// Answers for the same session are serialized; a completed session rejects
// further answers with a conflict error.
func (s *Service) Answer(ctx context.Context, input AnswerInput) (*AnswerResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	s.locks.Lock(input.SessionID.String())
	defer s.locks.Unlock(input.SessionID.String())

	session, err := s.sessions.GetSession(ctx, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.IsComplete() {
		return nil, fmt.Errorf("session %s already complete: %w", session.ID, domain.ErrConflict)
	}

	current := session.AdministeredItemIDs[len(session.AdministeredItemIDs)-1]
	if input.ItemID != current {
		return nil, domain.NewValidationError("item_id", "is not the session's current item")
	}

	item, err := s.items.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	correct := item.CheckAnswer(input.Answer)
	thetaBefore, seBefore := session.Theta, session.ThetaSE
	theta, se := cat.UpdateAbility(thetaBefore, seBefore, item.A(), item.Difficulty, correct)

	session.Theta = theta
	session.ThetaSE = se
	session.ItemsCompleted++

	response := &domain.PlacementResponse{
		ID:             uuid.New(),
		SessionID:      session.ID,
		ItemID:         item.ID,
		UserAnswer:     input.Answer,
		IsCorrect:      correct,
		ResponseTimeMs: input.ResponseTimeMs,
		ThetaBefore:    thetaBefore,
		ThetaAfter:     theta,
		SEBefore:       seBefore,
		SEAfter:        se,
	}

	result := &AnswerResult{IsCorrect: correct}

	if cat.ShouldStop(s.params, se, session.ItemsCompleted) {
		s.finalize(session, false)
	} else {
		next, exhausted, selErr := s.selectNext(ctx, session)
		if selErr != nil {
			return nil, selErr
		}
		if exhausted {
			// Catalog ran out before the stopping rule was satisfied.
			// Degraded termination, not an error.
			s.finalize(session, true)
		} else {
			session.AdministeredItemIDs = append(session.AdministeredItemIDs, next.ID)
			result.NextItem = &next
		}
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		updated, updateErr := s.sessions.UpdateSession(txCtx, session)
		if updateErr != nil {
			return fmt.Errorf("update session: %w", updateErr)
		}
		session = updated

		if _, respErr := s.sessions.CreateResponse(txCtx, response); respErr != nil {
			return fmt.Errorf("create response: %w", respErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Session = session
	if session.IsComplete() {
		low, high := cat.ConfidenceInterval(session.Theta, session.ThetaSE)
		result.Result = &domain.PlacementResult{
			Level:          *session.FinalLevel,
			Theta:          session.Theta,
			ConfidenceLow:  low,
			ConfidenceHigh: high,
			ItemsCompleted: session.ItemsCompleted,
			LowConfidence:  session.LowConfidence,
		}
		s.log.InfoContext(ctx, "placement session complete",
			"session_id", session.ID,
			"level", session.FinalLevel.String(),
			"theta", session.Theta,
			"items_completed", session.ItemsCompleted,
			"low_confidence", session.LowConfidence,
		)
	}
	return result, nil
}

// selectNext picks the unadministered catalog item closest to the current
// ability estimate. exhausted is true when none remain.
func (s *Service) selectNext(ctx context.Context, session *domain.PlacementSession) (domain.Item, bool, error) {
	items, err := s.items.ListByLanguage(ctx, session.Language)
	if err != nil {
		return domain.Item{}, false, fmt.Errorf("list items: %w", err)
	}

	administered := make(map[string]bool, len(session.AdministeredItemIDs))
	for _, id := range session.AdministeredItemIDs {
		administered[id.String()] = true
	}

	next, ok := cat.SelectNext(session.Theta, items, administered)
	return next, !ok, nil
}

func (s *Service) finalize(session *domain.PlacementSession, lowConfidence bool) {
	theta := session.Theta
	level := domain.NearestCEFRLevel(theta)
	session.Status = domain.SessionStatusComplete
	session.FinalTheta = &theta
	session.FinalLevel = &level
	session.LowConfidence = lowConfidence
}
