package domain

// CEFRLevel is the six-band proficiency scale used as the human-facing
// output of the placement ability estimate. It is reporting-only: scheduling
// math never reads it.
type CEFRLevel string

const (
	CEFRLevelA1 CEFRLevel = "A1"
	CEFRLevelA2 CEFRLevel = "A2"
	CEFRLevelB1 CEFRLevel = "B1"
	CEFRLevelB2 CEFRLevel = "B2"
	CEFRLevelC1 CEFRLevel = "C1"
	CEFRLevelC2 CEFRLevel = "C2"
)

// cefrThetas fixes the logit midpoint for each band. B1 sits at mid-scale.
var cefrThetas = []struct {
	level CEFRLevel
	theta float64
}{
	{CEFRLevelA1, -2.0},
	{CEFRLevelA2, -1.0},
	{CEFRLevelB1, 0.0},
	{CEFRLevelB2, 1.0},
	{CEFRLevelC1, 2.0},
	{CEFRLevelC2, 3.0},
}

func (l CEFRLevel) String() string { return string(l) }

func (l CEFRLevel) IsValid() bool {
	switch l {
	case CEFRLevelA1, CEFRLevelA2, CEFRLevelB1, CEFRLevelB2, CEFRLevelC1, CEFRLevelC2:
		return true
	}
	return false
}

// Theta returns the band's logit midpoint. Unknown levels map to 0.0 (B1).
func (l CEFRLevel) Theta() float64 {
	for _, m := range cefrThetas {
		if m.level == l {
			return m.theta
		}
	}
	return 0.0
}

// NearestCEFRLevel maps an ability estimate to the closest band.
// Bands are checked in ascending order, so a midpoint tie resolves to the
// lower band deterministically.
func NearestCEFRLevel(theta float64) CEFRLevel {
	best := CEFRLevelB1
	bestDist := -1.0
	for _, m := range cefrThetas {
		dist := theta - m.theta
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = m.level
		}
	}
	return best
}
