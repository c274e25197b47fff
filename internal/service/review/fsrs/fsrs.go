// Package fsrs implements the FSRS stability/difficulty scheduling model as
// the opt-in alternative to the SM-2 transition. Like sm2.Apply, Apply is a
// pure function over the supplied state, grade, and clock value.
package fsrs

import (
	"fmt"
	"math"
	"time"

	"github.com/adaptivelang/srs-backend/internal/domain"
)

// MinStability is the floor for stability values.
const MinStability = 0.1

// DefaultWeights are the default FSRS model weights (w[0]..w[18]).
var DefaultWeights = [19]float64{
	0.4072,  // w0  - initial stability for Again
	1.1829,  // w1  - initial stability for Hard
	3.1262,  // w2  - initial stability for Good
	15.4722, // w3  - initial stability for Easy
	7.2102,  // w4  - initial difficulty mean reversion
	0.5316,  // w5  - initial difficulty slope
	1.0651,  // w6  - difficulty update: D - w6*(G-3)
	0.0046,  // w7  - difficulty mean reversion weight
	1.5418,  // w8  - recall stability: exp(w8)
	0.1594,  // w9  - recall stability: S^(-w9)
	1.01,    // w10 - recall stability: exp(w10*(1-R)) - 1
	2.1791,  // w11 - forget stability: multiplier
	0.0292,  // w12 - forget stability: D^(-w12)
	0.2788,  // w13 - forget stability: (S+1)^w13 - 1
	0.2229,  // w14 - forget stability: exp(w14*(1-R))
	0.2604,  // w15 - recall stability: hard penalty
	3.3928,  // w16 - recall stability: easy bonus
	0.2223,  // w17 - short-term stability
	0.6744,  // w18 - short-term stability
}

// Parameters holds the FSRS configuration.
type Parameters struct {
	W                [19]float64
	DesiredRetention float64
	MaxIntervalDays  int
}

// DefaultParameters returns sensible defaults.
func DefaultParameters() Parameters {
	return Parameters{
		W:                DefaultWeights,
		DesiredRetention: 0.9,
		MaxIntervalDays:  365,
	}
}

// ValidateWeights checks that all 19 weights are finite and the initial
// stability weights are positive.
func ValidateWeights(w [19]float64) error {
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight w[%d] is invalid: %v", i, v)
		}
	}
	if w[0] <= 0 || w[1] <= 0 || w[2] <= 0 || w[3] <= 0 {
		return fmt.Errorf("initial stability weights w[0]-w[3] must be positive")
	}
	return nil
}

// Apply computes the next scheduling state under the FSRS model.
// The SM-2 bookkeeping fields (repetitions, lapse reset, ease floor) keep
// their contract; stability and difficulty drive the interval instead of
// the ease factor.
func Apply(params Parameters, state domain.ReviewState, grade domain.ReviewGrade, now time.Time) (domain.ReviewState, error) {
	if !grade.IsValid() {
		return domain.ReviewState{}, fmt.Errorf("%w: grade %d out of range 1..4", domain.ErrValidation, grade)
	}

	next := state

	if state.State == domain.CardStateNew || state.Stability < MinStability {
		next.Stability = InitialStability(params.W, grade)
		next.Difficulty = InitialDifficulty(params.W, grade)
	} else {
		elapsed := elapsedDays(state, now)
		r := Retrievability(elapsed, state.Stability)
		if grade.IsLapse() {
			next.Stability = StabilityAfterForgetting(params.W, state.Stability, state.Difficulty, r)
		} else {
			next.Stability = StabilityAfterRecall(params.W, state.Stability, state.Difficulty, r, grade)
		}
		next.Difficulty = NextDifficulty(params.W, state.Difficulty, grade)
	}

	if grade.IsLapse() {
		next.Repetitions = 0
		next.IntervalDays = 1
		if state.State == domain.CardStateNew {
			next.State = domain.CardStateLearning
		} else {
			next.State = domain.CardStateRelearning
		}
	} else {
		interval := NextInterval(next.Stability, params.DesiredRetention)
		if interval > params.MaxIntervalDays {
			interval = params.MaxIntervalDays
		}
		if interval < state.IntervalDays {
			interval = state.IntervalDays
		}
		next.IntervalDays = interval
		next.Repetitions = state.Repetitions + 1
		next.State = domain.CardStateReview
	}

	// Ease keeps its floor invariant even though FSRS does not use it.
	next.EaseFactor = math.Max(domain.MinEaseFactor, state.EaseFactor)

	next.Due = now.Add(time.Duration(next.IntervalDays) * 24 * time.Hour)
	g := grade
	next.LastGrade = &g

	return next, nil
}

// Retrievability calculates the probability of recall.
//
//	R(t, S) = (1 + t/(9*S))^(-1)
func Retrievability(elapsedDays int, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Pow(1+float64(elapsedDays)/(9*stability), -1)
}

// NextInterval converts stability and desired retention to an interval in days.
//
//	I(S, r) = round(9 * S * (1/r - 1))
func NextInterval(stability, requestRetention float64) int {
	if requestRetention <= 0 || requestRetention >= 1 {
		return 1
	}
	interval := 9 * stability * (1/requestRetention - 1)
	n := int(math.Round(interval))
	if n < 1 {
		return 1
	}
	return n
}

// InitialStability returns the starting stability for a given first grade.
//
//	S0(G) = w[G-1]  (clamped to MinStability)
func InitialStability(w [19]float64, grade domain.ReviewGrade) float64 {
	idx := int(grade) - 1
	if idx < 0 || idx > 3 {
		idx = 2
	}
	return math.Max(MinStability, w[idx])
}

// InitialDifficulty returns the starting difficulty for a given first grade.
//
//	D0(G) = w4 - exp(w5 * (G - 1)) + 1, clamped to [1, 10]
func InitialDifficulty(w [19]float64, grade domain.ReviewGrade) float64 {
	d := w[4] - math.Exp(w[5]*float64(grade-1)) + 1
	return clampDifficulty(d)
}

// NextDifficulty calculates the new difficulty after a review, with mean
// reversion toward D0(Easy) to prevent drift.
//
//	D'(D, G) = w7 * D0(4) + (1 - w7) * (D - w6 * (G - 3)), clamped to [1, 10]
func NextDifficulty(w [19]float64, d float64, grade domain.ReviewGrade) float64 {
	d0Easy := InitialDifficulty(w, domain.GradeEasy)
	newD := w[7]*d0Easy + (1-w[7])*(d-w[6]*(float64(grade)-3))
	return clampDifficulty(newD)
}

// StabilityAfterRecall calculates post-recall stability (grade >= Hard).
func StabilityAfterRecall(w [19]float64, s, d, r float64, grade domain.ReviewGrade) float64 {
	hardPenalty := 1.0
	if grade == domain.GradeHard {
		hardPenalty = w[15]
	}
	easyBonus := 1.0
	if grade == domain.GradeEasy {
		easyBonus = w[16]
	}

	newS := s * (math.Exp(w[8])*
		(11-d)*
		math.Pow(s, -w[9])*
		(math.Exp(w[10]*(1-r))-1)*
		hardPenalty*
		easyBonus +
		1)

	return math.Max(MinStability, newS)
}

// StabilityAfterForgetting calculates post-lapse stability, capped so a
// lapse never increases stability.
func StabilityAfterForgetting(w [19]float64, s, d, r float64) float64 {
	newS := w[11] *
		math.Pow(d, -w[12]) *
		(math.Pow(s+1, w[13]) - 1) *
		math.Exp(w[14]*(1-r))
	capped := s / math.Exp(w[17]*w[18])
	return math.Max(MinStability, math.Min(capped, newS))
}

func elapsedDays(state domain.ReviewState, now time.Time) int {
	if state.UpdatedAt.IsZero() {
		return 1
	}
	d := int(now.Sub(state.UpdatedAt).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}

func clampDifficulty(d float64) float64 {
	return math.Max(1, math.Min(10, d))
}
