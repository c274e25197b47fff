package domain

import "testing"

func TestCEFRLevel_Theta(t *testing.T) {
	tests := []struct {
		level CEFRLevel
		want  float64
	}{
		{CEFRLevelA1, -2.0},
		{CEFRLevelA2, -1.0},
		{CEFRLevelB1, 0.0},
		{CEFRLevelB2, 1.0},
		{CEFRLevelC1, 2.0},
		{CEFRLevelC2, 3.0},
		{CEFRLevel("X9"), 0.0},
	}

	for _, tt := range tests {
		if got := tt.level.Theta(); got != tt.want {
			t.Errorf("Theta(%s) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNearestCEFRLevel(t *testing.T) {
	tests := []struct {
		theta float64
		want  CEFRLevel
	}{
		{-3.5, CEFRLevelA1},
		{-2.0, CEFRLevelA1},
		{-1.2, CEFRLevelA2},
		{0.1, CEFRLevelB1},
		{0.5, CEFRLevelB1}, // midpoint tie resolves to the lower band
		{0.51, CEFRLevelB2},
		{2.4, CEFRLevelC1},
		{2.6, CEFRLevelC2},
		{9.0, CEFRLevelC2},
	}

	for _, tt := range tests {
		if got := NearestCEFRLevel(tt.theta); got != tt.want {
			t.Errorf("NearestCEFRLevel(%v) = %s, want %s", tt.theta, got, tt.want)
		}
	}
}
