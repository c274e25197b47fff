package cat

import (
	"math"
	"testing"

	"github.com/adaptivelang/srs-backend/internal/domain"
	"github.com/google/uuid"
)

func TestProbability(t *testing.T) {
	// An item at the learner's level is a coin flip.
	if p := Probability(0, 1, 0); math.Abs(p-0.5) > 1e-9 {
		t.Errorf("P(0;a=1,b=0) = %f, want 0.5", p)
	}
	// Easier items are more likely correct, harder less.
	if p := Probability(0, 1, -2); p <= 0.5 {
		t.Errorf("easy item p = %f, want > 0.5", p)
	}
	if p := Probability(0, 1, 2); p >= 0.5 {
		t.Errorf("hard item p = %f, want < 0.5", p)
	}
	// Discrimination sharpens the curve.
	if Probability(1, 2, 0) <= Probability(1, 1, 0) {
		t.Error("higher discrimination should raise p above difficulty")
	}
}

func TestInformation_PeaksAtMatchedDifficulty(t *testing.T) {
	matched := Information(0, 1, 0)
	for _, b := range []float64{-2, -1, 1, 2} {
		if got := Information(0, 1, b); got >= matched {
			t.Errorf("I(b=%v) = %f, want < I(b=0) = %f", b, got, matched)
		}
	}
}

func TestUpdateAbility_Direction(t *testing.T) {
	theta, se := 0.0, 1.0

	up, seUp := UpdateAbility(theta, se, 1, 0, true)
	if up <= theta {
		t.Errorf("correct answer: theta = %f, want > %f", up, theta)
	}
	down, seDown := UpdateAbility(theta, se, 1, 0, false)
	if down >= theta {
		t.Errorf("incorrect answer: theta = %f, want < %f", down, theta)
	}
	if seUp >= se || seDown >= se {
		t.Errorf("se must shrink: %f / %f, want < %f", seUp, seDown, se)
	}
}

func TestUpdateAbility_SENeverIncreases(t *testing.T) {
	theta, se := 0.0, 1.0
	for i := 0; i < 30; i++ {
		correct := i%2 == 0
		var newSE float64
		theta, newSE = UpdateAbility(theta, se, 1, theta, correct)
		if newSE > se {
			t.Fatalf("step %d: se increased %f -> %f", i, se, newSE)
		}
		se = newSE
	}
	if se > 0.3 {
		t.Errorf("se after 30 matched items = %f, want <= 0.3", se)
	}
}

func TestUpdateAbility_ConvergesToAnswerPattern(t *testing.T) {
	// Four straight correct answers on items near difficulty 0:
	// theta strictly increases, se strictly decreases.
	theta, se := 0.0, 1.0
	for i := 0; i < 4; i++ {
		newTheta, newSE := UpdateAbility(theta, se, 1, 0, true)
		if newTheta <= theta {
			t.Fatalf("step %d: theta = %f, want > %f", i+1, newTheta, theta)
		}
		if newSE >= se {
			t.Fatalf("step %d: se = %f, want < %f", i+1, newSE, se)
		}
		theta, se = newTheta, newSE
	}
	if theta <= 0 {
		t.Errorf("theta after 4 correct = %f, want > 0", theta)
	}
}

func TestShouldStop(t *testing.T) {
	params := DefaultParameters()

	tests := []struct {
		name  string
		se    float64
		items int
		want  bool
	}{
		{"below min items even with tiny se", 0.1, 3, false},
		{"min items but se too high", 0.5, 7, false},
		{"min items and se at target", 0.3, 7, true},
		{"max items regardless of se", 2.0, 12, true},
		{"beyond max items", 2.0, 15, true},
		{"mid-session", 0.4, 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldStop(params, tt.se, tt.items); got != tt.want {
				t.Errorf("ShouldStop(se=%v, n=%d) = %v, want %v", tt.se, tt.items, got, tt.want)
			}
		})
	}
}

func item(id string, difficulty float64) domain.Item {
	return domain.Item{ID: uuid.MustParse(id), Difficulty: difficulty}
}

func TestSelectNext_ClosestDifficulty(t *testing.T) {
	items := []domain.Item{
		item("00000000-0000-0000-0000-000000000001", -2.0),
		item("00000000-0000-0000-0000-000000000002", 0.4),
		item("00000000-0000-0000-0000-000000000003", 1.5),
	}

	got, ok := SelectNext(0.5, items, nil)
	if !ok {
		t.Fatal("no item selected")
	}
	if got.Difficulty != 0.4 {
		t.Errorf("selected difficulty %f, want 0.4", got.Difficulty)
	}
}

func TestSelectNext_TieBreaksOnLowestID(t *testing.T) {
	items := []domain.Item{
		item("00000000-0000-0000-0000-00000000000b", 1.0),
		item("00000000-0000-0000-0000-00000000000a", -1.0),
	}

	// theta 0 is equidistant from both; lowest id wins.
	got, ok := SelectNext(0, items, nil)
	if !ok {
		t.Fatal("no item selected")
	}
	if got.ID.String() != "00000000-0000-0000-0000-00000000000a" {
		t.Errorf("tie broke to %s, want ...00a", got.ID)
	}
}

func TestSelectNext_SkipsAdministered(t *testing.T) {
	items := []domain.Item{
		item("00000000-0000-0000-0000-000000000001", 0.0),
		item("00000000-0000-0000-0000-000000000002", 2.0),
	}
	administered := map[string]bool{"00000000-0000-0000-0000-000000000001": true}

	got, ok := SelectNext(0, items, administered)
	if !ok {
		t.Fatal("no item selected")
	}
	if got.Difficulty != 2.0 {
		t.Errorf("selected difficulty %f, want 2.0", got.Difficulty)
	}
}

func TestSelectNext_Exhausted(t *testing.T) {
	items := []domain.Item{item("00000000-0000-0000-0000-000000000001", 0.0)}
	administered := map[string]bool{"00000000-0000-0000-0000-000000000001": true}

	if _, ok := SelectNext(0, items, administered); ok {
		t.Error("selection from exhausted catalog should report false")
	}
}

func TestConfidenceInterval(t *testing.T) {
	lo, hi := ConfidenceInterval(1.0, 0.3)
	if math.Abs(lo-(1.0-1.96*0.3)) > 1e-9 || math.Abs(hi-(1.0+1.96*0.3)) > 1e-9 {
		t.Errorf("CI = [%f, %f], want ±1.96·se around 1.0", lo, hi)
	}
}
