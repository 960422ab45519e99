package domain

import "testing"

func TestCalculateElo(t *testing.T) {
	tests := []struct {
		name  string
		a, b  int
		score float64
		want  int
	}{
		{"even win", 1200, 1200, 1.0, 1216},
		{"even draw", 1200, 1200, 0.5, 1200},
		{"even loss", 1200, 1200, 0.0, 1184},
		{"upset win", 800, 1600, 1.0, 832},
		{"never negative", 5, 1600, 0.0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateElo(tt.a, tt.b, tt.score); got != tt.want {
				t.Errorf("CalculateElo(%d, %d, %v) = %d; want %d", tt.a, tt.b, tt.score, got, tt.want)
			}
		})
	}
}

func TestHumanScore(t *testing.T) {
	r := GameRecord{HumanSide: White}
	for winner, want := range map[Side]float64{White: 1, Black: 0, 0: 0.5} {
		r.WinnerSide = winner
		if got := r.HumanScore(); got != want {
			t.Errorf("winner %v: HumanScore = %v; want %v", winner, got, want)
		}
	}
}
