package placement

import (
	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
)

// StartInput holds the parameters for starting a placement session.
type StartInput struct {
	UserID       uuid.UUID
	Language     string
	ClaimedLevel *domain.CEFRLevel
}

// Validate checks all fields and collects all errors.
func (i *StartInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.Language == "" {
		errs = append(errs, domain.FieldError{Field: "language", Message: "required"})
	}
	if i.ClaimedLevel != nil && !i.ClaimedLevel.IsValid() {
		errs = append(errs, domain.FieldError{Field: "claimed_level", Message: "must be a CEFR level A1..C2"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AnswerInput holds the parameters for answering the current placement item.
type AnswerInput struct {
	SessionID      uuid.UUID
	ItemID         uuid.UUID
	Answer         string
	ResponseTimeMs *int
}

// Validate checks all fields and collects all errors.
func (i *AnswerInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if i.ItemID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if i.ResponseTimeMs != nil && *i.ResponseTimeMs < 0 {
		errs = append(errs, domain.FieldError{Field: "response_time_ms", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
