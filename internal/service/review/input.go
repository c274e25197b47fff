package review

import (
	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
)

// LogEncounterInput holds the parameters for recording an exposure event.
type LogEncounterInput struct {
	UserID    uuid.UUID
	ItemID    uuid.UUID
	Signals   []string
	RawText   string
	LatencyMs *int
	HintsUsed *int
}

// Validate checks all fields and collects all errors.
func (i *LogEncounterInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.ItemID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if i.LatencyMs != nil && *i.LatencyMs < 0 {
		errs = append(errs, domain.FieldError{Field: "latency_ms", Message: "must be non-negative"})
	}
	if i.HintsUsed != nil && *i.HintsUsed < 0 {
		errs = append(errs, domain.FieldError{Field: "hints_used", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// GradeInput holds the parameters for applying a grade.
type GradeInput struct {
	UserID     uuid.UUID
	ItemID     uuid.UUID
	Grade      domain.ReviewGrade
	DurationMs *int
}

// Validate checks all fields and collects all errors. The grade range is
// strict: out-of-range values are rejected, never clamped.
func (i *GradeInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.ItemID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if !i.Grade.IsValid() {
		errs = append(errs, domain.FieldError{Field: "grade", Message: "must be between 1 and 4"})
	}
	if i.DurationMs != nil && *i.DurationMs < 0 {
		errs = append(errs, domain.FieldError{Field: "duration_ms", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ListDueInput holds the parameters for fetching the due queue.
type ListDueInput struct {
	UserID uuid.UUID
	Limit  int
}

const (
	defaultDueLimit = 50
	maxDueLimit     = 200
)

// Validate checks all fields and collects all errors.
func (i *ListDueInput) Validate() error {
	var errs []domain.FieldError

	if i.UserID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.Limit < 0 || i.Limit > maxDueLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
