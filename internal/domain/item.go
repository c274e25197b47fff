package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Item is a catalog entry: displayed content plus IRT parameters.
// The catalog is read-only to the core engines: Difficulty sits on the same
// logit scale as the placement theta and is never mutated by them.
type Item struct {
	ID             uuid.UUID
	Language       string
	Kind           ContentKind
	Content        ItemContent
	Difficulty     float64
	Discrimination float64
	Level          *CEFRLevel
}

// A returns the discrimination parameter, defaulting to 1 (Rasch model)
// when the catalog carries none.
func (i *Item) A() float64 {
	if i.Discrimination > 0 {
		return i.Discrimination
	}
	return 1.0
}

// CheckAnswer scores a learner's answer against the item's answer key.
// Comparison is case-insensitive with surrounding whitespace ignored.
func (i *Item) CheckAnswer(answer string) bool {
	if i.Content == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(i.Content.AnswerKey()))
}

// ItemContent is the tagged variant over content kinds. Each kind has its own
// fixed required fields instead of an open-ended map.
type ItemContent interface {
	Kind() ContentKind
	// AnswerKey returns the string a learner's answer is scored against.
	AnswerKey() string
}

// ClozeContent is a fill-in-the-blank sentence.
type ClozeContent struct {
	Text   string   `json:"text"`
	Answer string   `json:"answer"`
	Hints  []string `json:"hints,omitempty"`
}

func (ClozeContent) Kind() ContentKind  { return ContentKindCloze }
func (c ClozeContent) AnswerKey() string { return c.Answer }

// VocabularyContent is a single word with its translation.
type VocabularyContent struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

func (VocabularyContent) Kind() ContentKind  { return ContentKindVocabulary }
func (c VocabularyContent) AnswerKey() string { return c.Translation }

// SentenceContent is a full sentence with its translation.
type SentenceContent struct {
	Source      string `json:"source"`
	Translation string `json:"translation"`
}

func (SentenceContent) Kind() ContentKind  { return ContentKindSentence }
func (c SentenceContent) AnswerKey() string { return c.Translation }

// MarshalContent serializes item content to its JSON payload.
func MarshalContent(c ItemContent) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("marshal content: %w: content is nil", ErrValidation)
	}
	return json.Marshal(c)
}

// UnmarshalContent deserializes a JSON payload into the variant named by kind.
func UnmarshalContent(kind ContentKind, data []byte) (ItemContent, error) {
	switch kind {
	case ContentKindCloze:
		var c ClozeContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshal cloze content: %w", err)
		}
		return c, nil
	case ContentKindVocabulary:
		var c VocabularyContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshal vocabulary content: %w", err)
		}
		return c, nil
	case ContentKindSentence:
		var c SentenceContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshal sentence content: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unmarshal content: %w: unknown kind %q", ErrValidation, kind)
	}
}

// ValidateContent checks the required fields of a content variant.
func ValidateContent(c ItemContent) error {
	switch v := c.(type) {
	case ClozeContent:
		if v.Text == "" || v.Answer == "" {
			return NewValidationError("content", "cloze requires text and answer")
		}
	case VocabularyContent:
		if v.Word == "" || v.Translation == "" {
			return NewValidationError("content", "vocabulary requires word and translation")
		}
	case SentenceContent:
		if v.Source == "" || v.Translation == "" {
			return NewValidationError("content", "sentence requires source and translation")
		}
	case nil:
		return NewValidationError("content", "required")
	default:
		return NewValidationError("content", "unknown content kind")
	}
	return nil
}
