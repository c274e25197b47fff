package domain

// ReviewGrade is the learner's self-assessed recall quality on the 1..4 scale.
type ReviewGrade int

const (
	GradeAgain ReviewGrade = 1
	GradeHard  ReviewGrade = 2
	GradeGood  ReviewGrade = 3
	GradeEasy  ReviewGrade = 4
)

func (g ReviewGrade) IsValid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// IsLapse reports whether the grade counts as a failed recall.
func (g ReviewGrade) IsLapse() bool { return g < GradeGood }

// Quality maps the 1..4 grade onto the classic SM-2 0..5 quality scale.
// Again fails outright; Hard/Good/Easy map to 3/4/5 so that Good leaves the
// ease factor unchanged and Easy increases it by exactly 0.1.
func (g ReviewGrade) Quality() int {
	switch g {
	case GradeAgain:
		return 0
	case GradeHard:
		return 3
	case GradeGood:
		return 4
	case GradeEasy:
		return 5
	}
	return 0
}

func (g ReviewGrade) String() string {
	switch g {
	case GradeAgain:
		return "AGAIN"
	case GradeHard:
		return "HARD"
	case GradeGood:
		return "GOOD"
	case GradeEasy:
		return "EASY"
	}
	return "UNKNOWN"
}

// CardState represents the scheduling state of a (learner, item) pair.
type CardState string

const (
	CardStateNew        CardState = "NEW"
	CardStateLearning   CardState = "LEARNING"
	CardStateReview     CardState = "REVIEW"
	CardStateRelearning CardState = "RELEARNING"
)

func (s CardState) String() string { return string(s) }

func (s CardState) IsValid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelearning:
		return true
	}
	return false
}

// SessionStatus represents the lifecycle state of a placement session.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusComplete   SessionStatus = "COMPLETE"
)

func (s SessionStatus) String() string { return string(s) }

func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusInProgress, SessionStatusComplete:
		return true
	}
	return false
}

// ContentKind identifies the payload shape of a catalog item.
type ContentKind string

const (
	ContentKindCloze      ContentKind = "CLOZE"
	ContentKindVocabulary ContentKind = "VOCABULARY"
	ContentKindSentence   ContentKind = "SENTENCE"
)

func (k ContentKind) String() string { return string(k) }

func (k ContentKind) IsValid() bool {
	switch k {
	case ContentKindCloze, ContentKindVocabulary, ContentKindSentence:
		return true
	}
	return false
}
