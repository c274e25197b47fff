// Package cat implements the adaptive-testing math for placement: the
// two-parameter-logistic IRT model, the Bayesian ability update, item
// selection, and the stopping rule. Everything here is pure and
// deterministic; the engine's session bookkeeping lives in the placement
// service.
package cat

import (
	"math"
	"strings"

	"github.com/adaptivelang/srs-backend/internal/domain"
)

// Parameters holds the CAT session configuration.
type Parameters struct {
	MinItems  int
	MaxItems  int
	SETarget  float64
	InitialSE float64
}

// DefaultParameters returns the standard placement configuration:
// 7 to 12 items, stopping once the standard error reaches 0.3.
func DefaultParameters() Parameters {
	return Parameters{
		MinItems:  7,
		MaxItems:  12,
		SETarget:  0.3,
		InitialSE: 1.0,
	}
}

// Probability is the 2PL model: the chance a learner of ability theta
// answers an item of difficulty b and discrimination a correctly.
//
//	P(theta) = 1 / (1 + exp(-a*(theta - b)))
func Probability(theta, a, b float64) float64 {
	return 1 / (1 + math.Exp(-a*(theta-b)))
}

// Information is the Fisher information the item carries at ability theta.
// It peaks when the item difficulty matches the ability (p near 0.5).
//
//	I(theta) = a^2 * p * (1 - p)
func Information(theta, a, b float64) float64 {
	p := Probability(theta, a, b)
	return a * a * p * (1 - p)
}

// UpdateAbility applies one Newton-style step on the likelihood and shrinks
// the standard error by the item's information:
//
//	theta' = theta + se^2 * a * (correct - p)
//	se'    = se / sqrt(1 + a^2 * p * (1-p) * se^2)
//
// The step is proportional to the current uncertainty, so corrections
// naturally shrink as evidence accumulates. se' never exceeds se.
func UpdateAbility(theta, se, a, b float64, correct bool) (float64, float64) {
	p := Probability(theta, a, b)

	outcome := 0.0
	if correct {
		outcome = 1.0
	}

	newTheta := theta + se*se*a*(outcome-p)
	newSE := se / math.Sqrt(1+a*a*p*(1-p)*se*se)
	return newTheta, newSE
}

// ShouldStop checks the stopping rule after an answer has been scored.
func ShouldStop(params Parameters, se float64, itemsCompleted int) bool {
	if itemsCompleted >= params.MaxItems {
		return true
	}
	return itemsCompleted >= params.MinItems && se <= params.SETarget
}

// SelectNext picks the unadministered item whose difficulty is closest to
// theta (maximum information under the 1PL simplification). Ties break on
// the lowest item identifier so selection is deterministic. Returns false
// when every candidate has been administered.
func SelectNext(theta float64, items []domain.Item, administered map[string]bool) (domain.Item, bool) {
	var best domain.Item
	bestDist := math.Inf(1)
	found := false

	for _, item := range items {
		if administered[item.ID.String()] {
			continue
		}
		dist := math.Abs(item.Difficulty - theta)
		switch {
		case dist < bestDist:
			best, bestDist, found = item, dist, true
		case dist == bestDist && found:
			if strings.Compare(item.ID.String(), best.ID.String()) < 0 {
				best = item
			}
		}
	}

	return best, found
}

// ConfidenceInterval returns the 95% interval around the ability estimate.
func ConfidenceInterval(theta, se float64) (float64, float64) {
	margin := 1.96 * se
	return theta - margin, theta + margin
}
